package models

import (
	"gorm.io/gorm"
)

const (
	LedgerDebit  = "DEBIT"
	LedgerCredit = "CREDIT"
)

// Amount is signed in minor units: negative for debits, positive for credits.
// BalanceAfter of the newest entry must always equal the account balance.
type LedgerEntry struct {
	gorm.Model

	AccountID     uint   `gorm:"index" json:"-"`
	AccountCode   string `gorm:"size:32;index" json:"account_code"`
	Type          string `gorm:"size:8" json:"type"`
	Amount        int64  `json:"amount"`
	BalanceBefore int64  `json:"balance_before"`
	BalanceAfter  int64  `json:"balance_after"`
	Reference     string `gorm:"size:64;index" json:"reference"`
	Note          string `gorm:"size:255" json:"note"`
}
