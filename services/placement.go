package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"tiempos/audit"
	"tiempos/database"
	"tiempos/logger"
	"tiempos/models"
	"tiempos/monitoring"
	"tiempos/svcerr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	placeMaxAttempts = 3
	placeRetryDelay  = 50 * time.Millisecond
)

var numberPattern = regexp.MustCompile(`^[0-9]{1,2}$`)

// NormalizeNumber validates a draw number and pads it to the canonical
// two-digit form ("7" -> "07").
func NormalizeNumber(n string) (string, error) {
	n = strings.TrimSpace(n)
	if !numberPattern.MatchString(n) {
		return "", fmt.Errorf("%w: number must match 00..99", svcerr.ErrInvalidDraw)
	}
	if len(n) == 1 {
		n = "0" + n
	}
	return n, nil
}

func newTicketCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TK-" + raw[:12]
}

type PlaceBetInput struct {
	ActorID     string
	AccountCode string
	Number      string
	Amount      int64
	DrawID      string
	DrawDate    string
	Mode        string
}

// PlaceBet admits and books a wager. Validation happens before any
// transaction opens; the admission check, balance debit, ledger entry, bet
// insert and audit event then commit as one unit. Ticket-code collisions are
// retried with a fresh code, infrastructure conflicts with a short backoff.
func PlaceBet(in PlaceBetInput) (*models.Bet, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", svcerr.ErrInvalidDraw)
	}

	number, err := NormalizeNumber(in.Number)
	if err != nil {
		monitoring.BetsRejected.WithLabelValues("invalid_number").Inc()
		return nil, err
	}
	in.Number = number

	if !models.ValidDrawID(in.DrawID) {
		return nil, fmt.Errorf("%w: unknown draw id %q", svcerr.ErrInvalidDraw, in.DrawID)
	}
	if _, err := time.Parse("2006-01-02", in.DrawDate); err != nil {
		return nil, fmt.Errorf("%w: draw date must be YYYY-MM-DD", svcerr.ErrInvalidDraw)
	}

	if in.Mode == "" {
		in.Mode = models.ModeStandard
	}
	if in.Mode != models.ModeStandard && in.Mode != models.ModeReventado {
		return nil, fmt.Errorf("%w: unknown mode %q", svcerr.ErrInvalidDraw, in.Mode)
	}

	var lastErr error
	for attempt := 0; attempt < placeMaxAttempts; attempt++ {
		bet, err := tryPlaceBet(in)
		if err == nil {
			monitoring.BetsPlaced.Inc()
			return bet, nil
		}

		if errors.Is(err, svcerr.ErrDuplicateTicket) {
			// Collision on the client-generated code: next attempt uses a
			// fresh one.
			lastErr = err
			continue
		}

		if svcerr.IsBusiness(err) {
			recordRejection(in, err)
			return nil, err
		}

		lastErr = err
		logger.Log.Warn("placement transaction retry",
			zap.String("account", in.AccountCode),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		time.Sleep(placeRetryDelay * time.Duration(attempt+1))
	}

	logger.Log.Error("placement retries exhausted",
		zap.String("account", in.AccountCode),
		zap.Error(lastErr),
	)
	monitoring.BetsRejected.WithLabelValues("unavailable").Inc()
	return nil, svcerr.ErrServiceUnavailable
}

func tryPlaceBet(in PlaceBetInput) (*models.Bet, error) {
	ticket := newTicketCode()

	var placed *models.Bet
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		closed, err := drawClosed(tx, in.DrawID, in.DrawDate)
		if err != nil {
			return err
		}
		if closed {
			return svcerr.ErrInvalidDraw
		}

		// Admission first, funds second, both under row locks so two
		// near-limit wagers cannot jointly slip past the ceiling.
		if err := admitExposure(tx, in.DrawID, in.DrawDate, in.Number, in.Amount); err != nil {
			return err
		}

		acc, err := lockAccount(tx, in.AccountCode)
		if err != nil {
			return err
		}

		note := fmt.Sprintf("wager %s on %s %s", in.Number, in.DrawID, in.DrawDate)
		if _, err := debitAccount(tx, acc, in.Amount, ticket, note); err != nil {
			return err
		}

		bet := models.Bet{
			TicketCode:  ticket,
			AccountID:   acc.ID,
			AccountCode: acc.AccountCode,
			Number:      in.Number,
			Amount:      in.Amount,
			DrawID:      in.DrawID,
			DrawDate:    in.DrawDate,
			Mode:        in.Mode,
			Status:      models.BetPending,
		}
		if err := tx.Create(&bet).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return svcerr.ErrDuplicateTicket
			}
			return err
		}

		if _, err := audit.Append(tx, audit.Entry{
			ActorID:        in.ActorID,
			Action:         audit.ActionBetPlaced,
			Severity:       models.SeverityInfo,
			TargetResource: "bet:" + ticket,
			Metadata: map[string]any{
				"account":   in.AccountCode,
				"number":    in.Number,
				"amount":    in.Amount,
				"draw_id":   in.DrawID,
				"draw_date": in.DrawDate,
				"mode":      in.Mode,
			},
		}); err != nil {
			return err
		}

		placed = &bet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// recordRejection writes the admission-decision audit event. The placement
// transaction rolled back, so this runs in its own.
func recordRejection(in PlaceBetInput, cause error) {
	monitoring.BetsRejected.WithLabelValues(strings.ToLower(svcerr.Code(cause))).Inc()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		_, aerr := audit.Append(tx, audit.Entry{
			ActorID:        in.ActorID,
			Action:         audit.ActionBetRejected,
			Severity:       models.SeverityWarning,
			TargetResource: "draw:" + in.DrawID + ":" + in.DrawDate,
			Metadata: map[string]any{
				"account":   in.AccountCode,
				"number":    in.Number,
				"amount":    in.Amount,
				"draw_id":   in.DrawID,
				"draw_date": in.DrawDate,
				"reason":    svcerr.Code(cause),
			},
		})
		return aerr
	})
	if err != nil {
		logger.Log.Error("failed to record rejection audit event", zap.Error(err))
	}
}

func drawClosed(tx *gorm.DB, drawID, drawDate string) (bool, error) {
	var dr models.DrawResult
	err := tx.Where("draw_id = ? AND draw_date = ? AND status = ?", drawID, drawDate, models.DrawClosed).
		First(&dr).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// GetBet looks a wager up by ticket code.
func GetBet(ticketCode string) (*models.Bet, error) {
	var bet models.Bet
	err := database.DB.Where("ticket_code = ?", ticketCode).First(&bet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcerr.ErrBetNotFound
		}
		return nil, err
	}
	return &bet, nil
}

// RefundBet is the explicit refund path: a PENDING wager is voided, the
// stake credited back and the claimed exposure released, all in one
// transaction.
func RefundBet(actorID, ticketCode string) (*models.Bet, error) {
	var refunded *models.Bet
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var bet models.Bet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("ticket_code = ?", ticketCode).First(&bet).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return svcerr.ErrBetNotFound
			}
			return err
		}

		if bet.Status != models.BetPending {
			return svcerr.ErrBetNotPending
		}

		now := time.Now()
		res := tx.Model(&bet).
			Where("id = ? AND status = ?", bet.ID, models.BetPending).
			Updates(map[string]any{"status": models.BetRefunded, "settled_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return svcerr.ErrBetNotPending
		}

		// Exposure before account, same order as placement, so a refund and
		// a placement on the same number and account cannot deadlock.
		if err := releaseExposure(tx, bet.DrawID, bet.DrawDate, bet.Number, bet.Amount); err != nil {
			return err
		}

		acc, err := lockAccount(tx, bet.AccountCode)
		if err != nil {
			return err
		}
		note := fmt.Sprintf("refund wager %s on %s %s", bet.Number, bet.DrawID, bet.DrawDate)
		if _, err := creditAccount(tx, acc, bet.Amount, bet.TicketCode, note); err != nil {
			return err
		}

		if _, err := audit.Append(tx, audit.Entry{
			ActorID:        actorID,
			Action:         audit.ActionBetRefunded,
			Severity:       models.SeverityInfo,
			TargetResource: "bet:" + bet.TicketCode,
			Metadata: map[string]any{
				"account": bet.AccountCode,
				"amount":  bet.Amount,
			},
		}); err != nil {
			return err
		}

		bet.Status = models.BetRefunded
		refunded = &bet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refunded, nil
}
