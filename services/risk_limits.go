package services

import (
	"tiempos/audit"
	"tiempos/database"
	"tiempos/models"
	"tiempos/svcerr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RiskLimitInput struct {
	ActorID     string
	DrawID      string
	Number      string
	MaxExposure *int64
}

// UpsertRiskLimit sets or replaces the exposure ceiling for a number. An
// empty draw id applies to all draw windows; a nil max exposure means
// explicitly unlimited.
func UpsertRiskLimit(in RiskLimitInput) (*models.RiskLimit, error) {
	number, err := NormalizeNumber(in.Number)
	if err != nil {
		return nil, err
	}
	if in.DrawID != "" && !models.ValidDrawID(in.DrawID) {
		return nil, svcerr.ErrInvalidDraw
	}

	var saved *models.RiskLimit
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		rl := models.RiskLimit{
			DrawID:      in.DrawID,
			Number:      number,
			MaxExposure: in.MaxExposure,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "draw_id"}, {Name: "number"}},
			DoUpdates: clause.AssignmentColumns([]string{"max_exposure", "updated_at"}),
		}).Create(&rl).Error
		if err != nil {
			return err
		}

		meta := map[string]any{"draw_id": in.DrawID, "number": number}
		if in.MaxExposure != nil {
			meta["max_exposure"] = *in.MaxExposure
		} else {
			meta["max_exposure"] = "unlimited"
		}
		if _, err := audit.Append(tx, audit.Entry{
			ActorID:        in.ActorID,
			Action:         audit.ActionRiskLimitSet,
			Severity:       models.SeverityInfo,
			TargetResource: "number:" + number,
			Metadata:       meta,
		}); err != nil {
			return err
		}

		saved = &rl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func ListRiskLimits() ([]models.RiskLimit, error) {
	var limits []models.RiskLimit
	err := database.DB.Order("number ASC, draw_id ASC").Find(&limits).Error
	return limits, err
}
