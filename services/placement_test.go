package services

import (
	"sync"
	"testing"

	"tiempos/audit"
	"tiempos/database"
	"tiempos/models"
	"tiempos/svcerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceBetDebitsAndRecordsLedger(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-PLACE1", 100_000)

	bet, err := PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-PLACE1",
		Number:      "47",
		Amount:      1_000,
		DrawID:      models.DrawEvening,
		DrawDate:    "2026-08-30",
	})
	require.NoError(t, err)
	require.NotNil(t, bet)
	assert.Equal(t, models.BetPending, bet.Status)
	assert.Equal(t, models.ModeStandard, bet.Mode)
	assert.NotEmpty(t, bet.TicketCode)

	var acc models.Account
	require.NoError(t, database.DB.Where("account_code = ?", "AC-PLACE1").First(&acc).Error)
	assert.Equal(t, int64(99_000), acc.Balance)

	var entry models.LedgerEntry
	require.NoError(t, database.DB.Where("reference = ?", bet.TicketCode).First(&entry).Error)
	assert.Equal(t, models.LedgerDebit, entry.Type)
	assert.Equal(t, int64(-1_000), entry.Amount)
	assert.Equal(t, int64(100_000), entry.BalanceBefore)
	assert.Equal(t, int64(99_000), entry.BalanceAfter)

	var exp models.DrawExposure
	require.NoError(t, database.DB.
		Where("draw_id = ? AND draw_date = ? AND number = ?", models.DrawEvening, "2026-08-30", "47").
		First(&exp).Error)
	assert.Equal(t, int64(1_000), exp.Total)

	var ev models.AuditEvent
	require.NoError(t, database.DB.Where("action = ?", audit.ActionBetPlaced).First(&ev).Error)
	assert.Equal(t, "op-1", ev.ActorID)
	assert.Equal(t, "bet:"+bet.TicketCode, ev.TargetResource)
}

func TestPlaceBetNumberNormalization(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-NORM", 10_000)

	bet, err := PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-NORM",
		Number:      "7",
		Amount:      500,
		DrawID:      models.DrawMidday,
		DrawDate:    "2026-08-30",
	})
	require.NoError(t, err)
	assert.Equal(t, "07", bet.Number)
}

func TestPlaceBetInsufficientFunds(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-POOR", 500)

	_, err := PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-POOR",
		Number:      "12",
		Amount:      1_000,
		DrawID:      models.DrawMidday,
		DrawDate:    "2026-08-30",
	})
	require.ErrorIs(t, err, svcerr.ErrInsufficientFunds)

	// Nothing committed: no bet, no ledger entry, balance untouched.
	var betCount, entryCount int64
	database.DB.Model(&models.Bet{}).Count(&betCount)
	database.DB.Model(&models.LedgerEntry{}).Count(&entryCount)
	assert.Zero(t, betCount)
	assert.Zero(t, entryCount)

	var acc models.Account
	require.NoError(t, database.DB.Where("account_code = ?", "AC-POOR").First(&acc).Error)
	assert.Equal(t, int64(500), acc.Balance)
}

func TestPlaceBetValidation(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-VAL", 10_000)

	cases := []struct {
		name string
		in   PlaceBetInput
	}{
		{"non numeric number", PlaceBetInput{AccountCode: "AC-VAL", Number: "xx", Amount: 100, DrawID: models.DrawMidday, DrawDate: "2026-08-30"}},
		{"three digits", PlaceBetInput{AccountCode: "AC-VAL", Number: "123", Amount: 100, DrawID: models.DrawMidday, DrawDate: "2026-08-30"}},
		{"zero amount", PlaceBetInput{AccountCode: "AC-VAL", Number: "10", Amount: 0, DrawID: models.DrawMidday, DrawDate: "2026-08-30"}},
		{"unknown draw", PlaceBetInput{AccountCode: "AC-VAL", Number: "10", Amount: 100, DrawID: "weekly", DrawDate: "2026-08-30"}},
		{"bad date", PlaceBetInput{AccountCode: "AC-VAL", Number: "10", Amount: 100, DrawID: models.DrawMidday, DrawDate: "30/08/2026"}},
		{"bad mode", PlaceBetInput{AccountCode: "AC-VAL", Number: "10", Amount: 100, DrawID: models.DrawMidday, DrawDate: "2026-08-30", Mode: "doble"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.ActorID = "op-1"
			_, err := PlaceBet(tc.in)
			assert.ErrorIs(t, err, svcerr.ErrInvalidDraw)
		})
	}
}

func TestPlaceBetClosedDraw(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-LATE", 10_000)

	require.NoError(t, database.DB.Create(&models.DrawResult{
		DrawID:        models.DrawMidday,
		DrawDate:      "2026-08-30",
		WinningNumber: "11",
		Status:        models.DrawClosed,
	}).Error)

	_, err := PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-LATE",
		Number:      "11",
		Amount:      100,
		DrawID:      models.DrawMidday,
		DrawDate:    "2026-08-30",
	})
	assert.ErrorIs(t, err, svcerr.ErrInvalidDraw)
}

func TestPlaceBetUnknownAccount(t *testing.T) {
	resetTables(t)

	_, err := PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-GHOST",
		Number:      "10",
		Amount:      100,
		DrawID:      models.DrawMidday,
		DrawDate:    "2026-08-30",
	})
	assert.ErrorIs(t, err, svcerr.ErrAccountNotFound)
}

func TestPlaceBetLimitExceeded(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-LIM", 1_000_000)
	setTestLimit(t, models.DrawMidday, "25", 100_000)

	_, err := PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-LIM",
		Number:      "25",
		Amount:      60_000,
		DrawID:      models.DrawMidday,
		DrawDate:    "2026-08-30",
	})
	require.NoError(t, err)

	_, err = PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-LIM",
		Number:      "25",
		Amount:      50_000,
		DrawID:      models.DrawMidday,
		DrawDate:    "2026-08-30",
	})
	require.ErrorIs(t, err, svcerr.ErrLimitExceeded)

	// The rejection is an audited admission decision.
	var ev models.AuditEvent
	require.NoError(t, database.DB.Where("action = ?", audit.ActionBetRejected).First(&ev).Error)
	assert.Equal(t, models.SeverityWarning, ev.Severity)

	// Exposure reflects only the accepted wager.
	var exp models.DrawExposure
	require.NoError(t, database.DB.
		Where("draw_id = ? AND number = ?", models.DrawMidday, "25").First(&exp).Error)
	assert.Equal(t, int64(60_000), exp.Total)
}

func TestPlaceBetBlockedAtCriticalExposure(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-CRIT", 1_000_000)
	setTestLimit(t, models.DrawMidday, "88", 100_000)

	_, err := PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-CRIT",
		Number:      "88",
		Amount:      95_000,
		DrawID:      models.DrawMidday,
		DrawDate:    "2026-08-30",
	})
	require.NoError(t, err)

	// 95% exposure blocks the number outright, even for tiny stakes.
	_, err = PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-CRIT",
		Number:      "88",
		Amount:      100,
		DrawID:      models.DrawMidday,
		DrawDate:    "2026-08-30",
	})
	assert.ErrorIs(t, err, svcerr.ErrLimitExceeded)
}

func TestConcurrentPlacementRespectsLimit(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-RACE1", 1_000_000)
	createTestAccount(t, "AC-RACE2", 1_000_000)
	setTestLimit(t, models.DrawMidday, "25", 100_000)

	amounts := []int64{60_000, 50_000}
	accounts := []string{"AC-RACE1", "AC-RACE2"}
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = PlaceBet(PlaceBetInput{
				ActorID:     "op-1",
				AccountCode: accounts[i],
				Number:      "25",
				Amount:      amounts[i],
				DrawID:      models.DrawMidday,
				DrawDate:    "2026-08-30",
			})
		}(i)
	}
	wg.Wait()

	// Together they would exceed the ceiling, so exactly one must lose.
	successes, rejections := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			require.ErrorIs(t, err, svcerr.ErrLimitExceeded)
			rejections++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)

	var exp models.DrawExposure
	require.NoError(t, database.DB.
		Where("draw_id = ? AND number = ?", models.DrawMidday, "25").First(&exp).Error)
	assert.LessOrEqual(t, exp.Total, int64(100_000))
}

func TestRefundBetRestoresFundsAndExposure(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-REF", 10_000)

	bet, err := PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-REF",
		Number:      "33",
		Amount:      2_000,
		DrawID:      models.DrawAfternoon,
		DrawDate:    "2026-08-30",
	})
	require.NoError(t, err)

	refunded, err := RefundBet("admin", bet.TicketCode)
	require.NoError(t, err)
	assert.Equal(t, models.BetRefunded, refunded.Status)

	var acc models.Account
	require.NoError(t, database.DB.Where("account_code = ?", "AC-REF").First(&acc).Error)
	assert.Equal(t, int64(10_000), acc.Balance)

	var exp models.DrawExposure
	require.NoError(t, database.DB.
		Where("draw_id = ? AND number = ?", models.DrawAfternoon, "33").First(&exp).Error)
	assert.Zero(t, exp.Total)

	// Terminal state is sticky.
	_, err = RefundBet("admin", bet.TicketCode)
	assert.ErrorIs(t, err, svcerr.ErrBetNotPending)
}

func TestConcurrentRefundAndPlacementSameNumber(t *testing.T) {
	resetTables(t)
	createTestAccount(t, "AC-MIX", 100_000)

	first, err := PlaceBet(PlaceBetInput{
		ActorID:     "op-1",
		AccountCode: "AC-MIX",
		Number:      "40",
		Amount:      2_000,
		DrawID:      models.DrawMidday,
		DrawDate:    "2026-08-30",
	})
	require.NoError(t, err)

	// A refund and a fresh wager contending on the same account and the same
	// exposure row must both complete.
	var wg sync.WaitGroup
	var refundErr, placeErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, refundErr = RefundBet("admin", first.TicketCode)
	}()
	go func() {
		defer wg.Done()
		_, placeErr = PlaceBet(PlaceBetInput{
			ActorID:     "op-1",
			AccountCode: "AC-MIX",
			Number:      "40",
			Amount:      3_000,
			DrawID:      models.DrawMidday,
			DrawDate:    "2026-08-30",
		})
	}()
	wg.Wait()
	require.NoError(t, refundErr)
	require.NoError(t, placeErr)

	var exp models.DrawExposure
	require.NoError(t, database.DB.
		Where("draw_id = ? AND number = ?", models.DrawMidday, "40").
		First(&exp).Error)
	assert.Equal(t, int64(3_000), exp.Total)

	var acc models.Account
	require.NoError(t, database.DB.Where("account_code = ?", "AC-MIX").First(&acc).Error)
	assert.Equal(t, int64(97_000), acc.Balance)
}

func TestRefundUnknownTicket(t *testing.T) {
	resetTables(t)

	_, err := RefundBet("admin", "TK-NOPE")
	assert.ErrorIs(t, err, svcerr.ErrBetNotFound)
}
