package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"tiempos/audit"
	"tiempos/database"
	"tiempos/logger"
	"tiempos/models"
	"tiempos/monitoring"
	"tiempos/svcerr"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultStandardMultiplier  = "90"
	defaultReventadoMultiplier = "180"
)

type SettleDrawInput struct {
	ActorID         string
	DrawID          string
	DrawDate        string
	WinningNumber   string
	IsReventado     bool
	ReventadoNumber string
}

type SettleDrawResult struct {
	ProcessedCount int  `json:"processed_count"`
	WonCount       int  `json:"won_count"`
	LostCount      int  `json:"lost_count"`
	FailedCount    int  `json:"failed_count"`
	AlreadyApplied bool `json:"already_applied"`
}

// SettleDraw resolves every pending wager for one draw window. The draw
// result is closed first and acts as the ran-already marker, so a duplicate
// trigger becomes a no-op. Each bet then settles in its own transaction: a
// single payout failure is logged as a CRITICAL audit event and the batch
// moves on.
func SettleDraw(in SettleDrawInput) (*SettleDrawResult, error) {
	if !models.ValidDrawID(in.DrawID) {
		return nil, fmt.Errorf("%w: unknown draw id %q", svcerr.ErrInvalidDraw, in.DrawID)
	}
	if _, err := time.Parse("2006-01-02", in.DrawDate); err != nil {
		return nil, fmt.Errorf("%w: draw date must be YYYY-MM-DD", svcerr.ErrInvalidDraw)
	}

	winning, err := NormalizeNumber(in.WinningNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: missing or malformed winning number", svcerr.ErrInvalidDraw)
	}
	in.WinningNumber = winning

	if in.IsReventado {
		rev, err := NormalizeNumber(in.ReventadoNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: reventado draw requires a reventado number", svcerr.ErrInvalidDraw)
		}
		in.ReventadoNumber = rev
	}

	applied, err := closeDrawResult(in)
	if err != nil {
		return nil, err
	}
	if applied {
		return &SettleDrawResult{AlreadyApplied: true}, nil
	}

	monitoring.SettlementRuns.Inc()

	out, err := settlePendingBets(in.ActorID, in.DrawID, in.DrawDate, in.WinningNumber, in.IsReventado)
	if err != nil {
		return nil, err
	}

	if aerr := recordSettlementCompleted(in, out); aerr != nil {
		logger.Log.Error("failed to record settlement completion", zap.Error(aerr))
	}

	logger.Log.Info("draw settled",
		zap.String("draw_id", in.DrawID),
		zap.String("draw_date", in.DrawDate),
		zap.String("winning_number", in.WinningNumber),
		zap.Int("processed", out.ProcessedCount),
		zap.Int("failed", out.FailedCount),
	)
	return out, nil
}

// closeDrawResult persists the CLOSED result exactly once. Returns true when
// settlement already ran for this (draw_id, draw_date).
func closeDrawResult(in SettleDrawInput) (bool, error) {
	applied := false
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.DrawResult
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("draw_id = ? AND draw_date = ?", in.DrawID, in.DrawDate).
			First(&existing).Error
		if err == nil {
			if existing.Status == models.DrawClosed {
				applied = true
				return nil
			}
			// Pre-opened window: close it with the published numbers.
			updates := map[string]any{
				"status":         models.DrawClosed,
				"winning_number": in.WinningNumber,
				"is_reventado":   in.IsReventado,
			}
			if in.IsReventado {
				updates["reventado_number"] = in.ReventadoNumber
			}
			res := tx.Model(&existing).
				Where("id = ? AND status = ?", existing.ID, models.DrawOpen).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				applied = true
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		dr := models.DrawResult{
			DrawID:        in.DrawID,
			DrawDate:      in.DrawDate,
			WinningNumber: in.WinningNumber,
			IsReventado:   in.IsReventado,
			Status:        models.DrawClosed,
		}
		if in.IsReventado {
			rev := in.ReventadoNumber
			dr.ReventadoNumber = &rev
		}
		if err := tx.Create(&dr).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				applied = true
				return nil
			}
			return err
		}
		return nil
	})
	return applied, err
}

// settlePendingBets scans the pending wagers scoped strictly to one draw
// window and resolves each in an isolated transaction.
func settlePendingBets(actorID, drawID, drawDate, winning string, isReventado bool) (*SettleDrawResult, error) {
	var bets []models.Bet
	err := database.DB.
		Where("draw_id = ? AND draw_date = ? AND status = ?", drawID, drawDate, models.BetPending).
		Order("id ASC").
		Find(&bets).Error
	if err != nil {
		return nil, err
	}

	out := &SettleDrawResult{}
	for i := range bets {
		bet := &bets[i]

		outcome, err := settleBet(actorID, bet.ID, winning, isReventado)
		if err != nil {
			out.FailedCount++
			monitoring.PayoutFailures.Inc()
			logger.Log.Error("payout failure",
				zap.String("ticket", bet.TicketCode),
				zap.String("draw_id", drawID),
				zap.Error(err),
			)
			recordPayoutFailure(actorID, bet, err)
			continue
		}

		if outcome == "" {
			// Lost the race against a concurrent settle of the same bet.
			continue
		}

		out.ProcessedCount++
		monitoring.BetsSettled.WithLabelValues(outcome).Inc()
		if outcome == models.BetWon {
			out.WonCount++
		} else {
			out.LostCount++
		}
	}
	return out, nil
}

// settleBet flips one wager out of PENDING exactly once and credits winners.
// An empty outcome means the bet was no longer pending.
func settleBet(actorID string, betID uint, winning string, isReventado bool) (string, error) {
	outcome := ""
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var bet models.Bet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bet, betID).Error; err != nil {
			return err
		}
		if bet.Status != models.BetPending {
			return nil
		}

		now := time.Now()

		if bet.Number != winning {
			res := tx.Model(&bet).
				Where("id = ? AND status = ?", bet.ID, models.BetPending).
				Updates(map[string]any{"status": models.BetLost, "settled_at": now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			outcome = models.BetLost
			return nil
		}

		payout := WinPayout(bet.Amount, bet.Mode, isReventado)

		res := tx.Model(&bet).
			Where("id = ? AND status = ?", bet.ID, models.BetPending).
			Updates(map[string]any{"status": models.BetWon, "payout": payout, "settled_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		acc, err := lockAccount(tx, bet.AccountCode)
		if err != nil {
			return err
		}
		note := fmt.Sprintf("winnings %s on %s %s", bet.Number, bet.DrawID, bet.DrawDate)
		if _, err := creditAccount(tx, acc, payout, bet.TicketCode, note); err != nil {
			return err
		}

		if _, err := audit.Append(tx, audit.Entry{
			ActorID:        actorID,
			Action:         audit.ActionSettlementCredit,
			Severity:       models.SeverityInfo,
			TargetResource: "bet:" + bet.TicketCode,
			Metadata: map[string]any{
				"account":        bet.AccountCode,
				"payout":         payout,
				"winning_number": winning,
				"mode":           bet.Mode,
			},
		}); err != nil {
			return err
		}

		monitoring.PayoutMinorUnits.Add(float64(payout))
		outcome = models.BetWon
		return nil
	})
	return outcome, err
}

// WinPayout computes the credit for a winning wager. Reventado mode only
// earns the boosted multiplier when the draw itself was flagged reventado;
// otherwise the bet still wins at the standard rate.
func WinPayout(amount int64, mode string, drawReventado bool) int64 {
	mult := standardMultiplier()
	if mode == models.ModeReventado && drawReventado {
		mult = reventadoMultiplier()
	}
	return decimal.NewFromInt(amount).Mul(mult).IntPart()
}

func standardMultiplier() decimal.Decimal {
	return multiplierFromEnv("STANDARD_MULTIPLIER", defaultStandardMultiplier)
}

func reventadoMultiplier() decimal.Decimal {
	return multiplierFromEnv("REVENTADO_MULTIPLIER", defaultReventadoMultiplier)
}

func multiplierFromEnv(key, fallback string) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fallback
	}
	m, err := decimal.NewFromString(raw)
	if err != nil || m.IsNegative() || m.IsZero() {
		m, _ = decimal.NewFromString(fallback)
	}
	return m
}

func recordPayoutFailure(actorID string, bet *models.Bet, cause error) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		_, aerr := audit.Append(tx, audit.Entry{
			ActorID:        actorID,
			Action:         audit.ActionPayoutFailure,
			Severity:       models.SeverityCritical,
			TargetResource: "bet:" + bet.TicketCode,
			Metadata: map[string]any{
				"account":   bet.AccountCode,
				"draw_id":   bet.DrawID,
				"draw_date": bet.DrawDate,
				"amount":    bet.Amount,
				"error":     cause.Error(),
			},
		})
		return aerr
	})
	if err != nil {
		logger.Log.Error("failed to record payout failure audit event",
			zap.String("ticket", bet.TicketCode),
			zap.Error(err),
		)
	}
}

func recordSettlementCompleted(in SettleDrawInput, out *SettleDrawResult) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		_, err := audit.Append(tx, audit.Entry{
			ActorID:        in.ActorID,
			Action:         audit.ActionSettlementCompleted,
			Severity:       models.SeverityInfo,
			TargetResource: "draw:" + in.DrawID + ":" + in.DrawDate,
			Metadata: map[string]any{
				"winning_number": in.WinningNumber,
				"is_reventado":   in.IsReventado,
				"processed":      out.ProcessedCount,
				"won":            out.WonCount,
				"lost":           out.LostCount,
				"failed":         out.FailedCount,
			},
		})
		return err
	})
}

// GetDrawResult returns the published result for a window, if any.
func GetDrawResult(drawID, drawDate string) (*models.DrawResult, error) {
	var dr models.DrawResult
	err := database.DB.Where("draw_id = ? AND draw_date = ?", drawID, drawDate).First(&dr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcerr.ErrInvalidDraw
		}
		return nil, err
	}
	return &dr, nil
}

// ReconcilePendingBets re-drives wagers that a previous settlement run left
// pending under an already-closed draw (payout faults, interrupted scans).
func ReconcilePendingBets(actorID string) (int, error) {
	var results []models.DrawResult
	err := database.DB.
		Where("status = ?", models.DrawClosed).
		Where(`EXISTS (
			SELECT 1 FROM bets
			WHERE bets.draw_id = draw_results.draw_id
			  AND bets.draw_date = draw_results.draw_date
			  AND bets.status = ?
			  AND bets.deleted_at IS NULL
		)`, models.BetPending).
		Find(&results).Error
	if err != nil {
		return 0, err
	}

	total := 0
	for i := range results {
		r := &results[i]
		out, err := settlePendingBets(actorID, r.DrawID, r.DrawDate, r.WinningNumber, r.IsReventado)
		if err != nil {
			logger.Log.Error("reconciliation scan failed",
				zap.String("draw_id", r.DrawID),
				zap.String("draw_date", r.DrawDate),
				zap.Error(err),
			)
			continue
		}
		total += out.ProcessedCount
	}
	return total, nil
}
