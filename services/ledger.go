package services

import (
	"errors"

	"tiempos/database"
	"tiempos/models"
	"tiempos/svcerr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockAccount loads the account row FOR UPDATE. Deleted accounts are
// treated as missing.
func lockAccount(tx *gorm.DB, accountCode string) (*models.Account, error) {
	var acc models.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_code = ? AND status <> ?", accountCode, models.AccountDeleted).
		First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcerr.ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// debitAccount moves funds out of a locked account and appends the DEBIT
// ledger entry with the before/after snapshot. The caller owns the
// transaction.
func debitAccount(tx *gorm.DB, acc *models.Account, amount int64, reference, note string) (*models.LedgerEntry, error) {
	if acc.Status != models.AccountActive {
		return nil, svcerr.ErrAccountSuspended
	}
	if acc.Balance < amount {
		return nil, svcerr.ErrInsufficientFunds
	}

	before := acc.Balance
	acc.Balance -= amount
	if err := tx.Model(acc).Update("balance", acc.Balance).Error; err != nil {
		return nil, err
	}

	entry := models.LedgerEntry{
		AccountID:     acc.ID,
		AccountCode:   acc.AccountCode,
		Type:          models.LedgerDebit,
		Amount:        -amount,
		BalanceBefore: before,
		BalanceAfter:  acc.Balance,
		Reference:     reference,
		Note:          note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// creditAccount adds funds to a locked account. Suspended accounts still
// receive credits (money owed is money owed); only deleted accounts fail,
// and those never reach here because lockAccount excludes them.
func creditAccount(tx *gorm.DB, acc *models.Account, amount int64, reference, note string) (*models.LedgerEntry, error) {
	before := acc.Balance
	acc.Balance += amount
	if err := tx.Model(acc).Update("balance", acc.Balance).Error; err != nil {
		return nil, err
	}

	entry := models.LedgerEntry{
		AccountID:     acc.ID,
		AccountCode:   acc.AccountCode,
		Type:          models.LedgerCredit,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  acc.Balance,
		Reference:     reference,
		Note:          note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// LedgerHistory returns an account's ledger entries newest first.
func LedgerHistory(accountCode string, page, pageSize int) ([]models.LedgerEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var acc models.Account
	if err := database.DB.Where("account_code = ?", accountCode).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, svcerr.ErrAccountNotFound
		}
		return nil, 0, err
	}

	var total int64
	if err := database.DB.Model(&models.LedgerEntry{}).
		Where("account_id = ?", acc.ID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.LedgerEntry
	err := database.DB.Where("account_id = ?", acc.ID).
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
