package tasks

import (
	"log"
	"time"

	"tiempos/database"
	"tiempos/models"
)

// CleanupStaleExposures drops exposure aggregates for draws that closed more
// than a week ago. Admission never consults them again once the draw is
// closed, so they are dead weight.
func CleanupStaleExposures() {
	weekAgo := time.Now().Add(-7 * 24 * time.Hour)

	result := database.DB.
		Where(`(draw_id, draw_date) IN (
			SELECT draw_id, draw_date FROM draw_results
			WHERE status = ? AND updated_at < ? AND deleted_at IS NULL
		)`, models.DrawClosed, weekAgo).
		Delete(&models.DrawExposure{})

	if result.Error != nil {
		log.Println("❌ Failed to delete stale exposures:", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("✅ Deleted %d stale exposure aggregates\n", result.RowsAffected)
	}
}

func StartExposureCleanup() {
	ticker := time.NewTicker(6 * time.Hour)
	go func() {
		for {
			<-ticker.C
			CleanupStaleExposures()
		}
	}()
}
