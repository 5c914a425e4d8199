package models

import (
	"gorm.io/gorm"
)

const (
	DrawOpen   = "OPEN"
	DrawClosed = "CLOSED"
)

// The three daily draw windows.
const (
	DrawMidday    = "midday"
	DrawAfternoon = "afternoon"
	DrawEvening   = "evening"
)

func ValidDrawID(id string) bool {
	switch id {
	case DrawMidday, DrawAfternoon, DrawEvening:
		return true
	}
	return false
}

// A CLOSED row for a (draw_id, draw_date) pair is the marker that
// settlement already ran for that window.
type DrawResult struct {
	gorm.Model

	DrawID          string  `gorm:"size:16;index:uk_draw_result,unique" json:"draw_id"`
	DrawDate        string  `gorm:"size:10;index:uk_draw_result,unique" json:"draw_date"`
	WinningNumber   string  `gorm:"size:2" json:"winning_number"`
	IsReventado     bool    `json:"is_reventado"`
	ReventadoNumber *string `gorm:"size:2" json:"reventado_number,omitempty"`
	Status          string  `gorm:"size:8;index" json:"status"`
}

// DrawExposure is the lockable pending-wager aggregate per number and draw
// window. Placement increments it under a row lock, refunds decrement it.
type DrawExposure struct {
	gorm.Model

	DrawID   string `gorm:"size:16;index:uk_draw_exposure,unique" json:"draw_id"`
	DrawDate string `gorm:"size:10;index:uk_draw_exposure,unique" json:"draw_date"`
	Number   string `gorm:"size:2;index:uk_draw_exposure,unique" json:"number"`
	Total    int64  `json:"total"`
}

type RiskLimit struct {
	gorm.Model

	DrawID      string `gorm:"size:16;index:uk_risk_limit,unique" json:"draw_id"`
	Number      string `gorm:"size:2;index:uk_risk_limit,unique" json:"number"`
	MaxExposure *int64 `json:"max_exposure"`
}
