package services

import (
	"errors"
	"os"
	"strconv"

	"tiempos/database"
	"tiempos/models"
	"tiempos/svcerr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	RiskSafe     = "SAFE"
	RiskCaution  = "CAUTION"
	RiskCritical = "CRITICAL"
)

const (
	riskCautionPercent = 70
	riskBlockPercent   = 95
)

type RiskStatus struct {
	Status          string  `json:"status"`
	ExposurePercent float64 `json:"exposure_percent"`
	Blocked         bool    `json:"blocked"`
	Exposure        int64   `json:"exposure"`
	Limit           *int64  `json:"limit,omitempty"`
}

// EvaluateRisk is the read-only classification used by the sales surface.
// It is advisory: the authoritative check re-runs inside the placement
// transaction with the exposure row locked.
func EvaluateRisk(drawID, drawDate, number string) (*RiskStatus, error) {
	number, err := NormalizeNumber(number)
	if err != nil {
		return nil, err
	}
	if !models.ValidDrawID(drawID) {
		return nil, svcerr.ErrInvalidDraw
	}

	var exp models.DrawExposure
	total := int64(0)
	err = database.DB.
		Where("draw_id = ? AND draw_date = ? AND number = ?", drawID, drawDate, number).
		First(&exp).Error
	if err == nil {
		total = exp.Total
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	limit, err := effectiveLimit(database.DB, drawID, number)
	if err != nil {
		return nil, err
	}

	st := classifyExposure(total, limit)
	return &st, nil
}

// classifyExposure maps pending exposure against the effective limit onto
// the SIPR tiers: <70% SAFE, 70-95% CAUTION, >=95% CRITICAL and blocked.
func classifyExposure(total int64, limit *int64) RiskStatus {
	st := RiskStatus{Exposure: total, Limit: limit}

	if limit == nil || *limit <= 0 {
		st.Status = RiskSafe
		return st
	}

	pct := decimal.NewFromInt(total).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(*limit))
	st.ExposurePercent, _ = pct.Round(2).Float64()

	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(riskBlockPercent)):
		st.Status = RiskCritical
		st.Blocked = true
	case pct.GreaterThanOrEqual(decimal.NewFromInt(riskCautionPercent)):
		st.Status = RiskCaution
	default:
		st.Status = RiskSafe
	}
	return st
}

// effectiveLimit resolves the exposure ceiling for a number: draw-specific
// override, then the all-draws override, then the configured default.
// nil means unlimited.
func effectiveLimit(db *gorm.DB, drawID, number string) (*int64, error) {
	var rl models.RiskLimit
	err := db.Where("draw_id = ? AND number = ?", drawID, number).First(&rl).Error
	if err == nil {
		return rl.MaxExposure, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Where("draw_id = '' AND number = ?", number).First(&rl).Error
	if err == nil {
		return rl.MaxExposure, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if v, perr := strconv.ParseInt(os.Getenv("RISK_DEFAULT_LIMIT"), 10, 64); perr == nil && v > 0 {
		return &v, nil
	}
	return nil, nil
}

// admitExposure is the in-transaction admission check. It locks (creating if
// absent) the exposure aggregate for the number and draw window, rejects if
// the number is already blocked or the candidate amount would push exposure
// over the limit, and otherwise claims the amount while the lock is held.
func admitExposure(tx *gorm.DB, drawID, drawDate, number string, amount int64) error {
	exp, err := lockExposureRow(tx, drawID, drawDate, number)
	if err != nil {
		return err
	}

	limit, err := effectiveLimit(tx, drawID, number)
	if err != nil {
		return err
	}

	if limit != nil && *limit > 0 {
		if classifyExposure(exp.Total, limit).Blocked {
			return svcerr.ErrLimitExceeded
		}
		if exp.Total+amount > *limit {
			return svcerr.ErrLimitExceeded
		}
	}

	exp.Total += amount
	return tx.Model(exp).Update("total", exp.Total).Error
}

// releaseExposure gives claimed exposure back on refund.
func releaseExposure(tx *gorm.DB, drawID, drawDate, number string, amount int64) error {
	exp, err := lockExposureRow(tx, drawID, drawDate, number)
	if err != nil {
		return err
	}
	exp.Total -= amount
	if exp.Total < 0 {
		exp.Total = 0
	}
	return tx.Model(exp).Update("total", exp.Total).Error
}

func lockExposureRow(tx *gorm.DB, drawID, drawDate, number string) (*models.DrawExposure, error) {
	var exp models.DrawExposure
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("draw_id = ? AND draw_date = ? AND number = ?", drawID, drawDate, number).
		First(&exp).Error
	if err == nil {
		return &exp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// First wager on this number: seed the aggregate. A concurrent seed is
	// absorbed by ON CONFLICT DO NOTHING, then both sides contend on the
	// row lock below.
	seed := models.DrawExposure{DrawID: drawID, DrawDate: drawDate, Number: number}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}

	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("draw_id = ? AND draw_date = ? AND number = ?", drawID, drawDate, number).
		First(&exp).Error
	if err != nil {
		return nil, err
	}
	return &exp, nil
}
