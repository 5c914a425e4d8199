package models

import (
	"gorm.io/gorm"
)

const (
	AccountActive    = "active"
	AccountSuspended = "suspended"
	AccountDeleted   = "deleted"
)

type Account struct {
	gorm.Model

	AccountCode string `gorm:"uniqueIndex;size:32" json:"account_code"`
	DisplayName string `gorm:"size:64" json:"display_name"`
	Balance     int64  `json:"balance"`
	Status      string `gorm:"size:16;index;default:active" json:"status"`

	Entries []LedgerEntry `gorm:"foreignKey:AccountID" json:"-"`
	Bets    []Bet         `gorm:"foreignKey:AccountID" json:"-"`
}

type Operator struct {
	gorm.Model

	OperatorCode string `gorm:"uniqueIndex;size:32" json:"operator_code"`
	SecretKey    string `gorm:"size:64" json:"-"`
	Name         string `gorm:"size:64" json:"name"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
