package jobs

import (
	"time"

	"tiempos/logger"
	"tiempos/services"

	"go.uber.org/zap"
)

// StartReconciliationScheduler re-drives wagers a settlement run left
// pending under a closed draw (payout faults, interrupted scans).
func StartReconciliationScheduler() {
	ticker := time.NewTicker(2 * time.Minute)
	go func() {
		for {
			<-ticker.C
			n, err := services.ReconcilePendingBets("reconciler")
			if err != nil {
				logger.Log.Error("reconciliation run failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Log.Info("reconciliation settled stragglers", zap.Int("count", n))
			}
		}
	}()
}
