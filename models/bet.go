package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	BetPending  = "PENDING"
	BetWon      = "WON"
	BetLost     = "LOST"
	BetRefunded = "REFUNDED"
)

const (
	ModeStandard  = "standard"
	ModeReventado = "reventado"
)

type Bet struct {
	gorm.Model

	TicketCode  string `gorm:"uniqueIndex;size:40" json:"ticket_code"`
	AccountID   uint   `gorm:"index" json:"-"`
	AccountCode string `gorm:"size:32;index" json:"account_code"`
	Number      string `gorm:"size:2;index" json:"number"`
	Amount      int64  `json:"amount"`
	DrawID      string `gorm:"size:16;index:idx_bets_draw" json:"draw_id"`
	DrawDate    string `gorm:"size:10;index:idx_bets_draw" json:"draw_date"`
	Mode        string `gorm:"size:16" json:"mode"`
	Status      string `gorm:"size:16;index" json:"status"`
	Payout      int64  `json:"payout"`

	SettledAt *time.Time     `json:"settled_at,omitempty"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"-"`
}
