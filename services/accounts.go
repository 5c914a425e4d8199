package services

import (
	"errors"
	"strings"

	"tiempos/audit"
	"tiempos/database"
	"tiempos/models"
	"tiempos/svcerr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateAccountInput struct {
	ActorID     string
	AccountCode string
	DisplayName string
}

func CreateAccount(in CreateAccountInput) (*models.Account, error) {
	in.AccountCode = strings.TrimSpace(in.AccountCode)
	if in.AccountCode == "" {
		in.AccountCode = "AC-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:10]
	}

	var created *models.Account
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		acc := models.Account{
			AccountCode: in.AccountCode,
			DisplayName: in.DisplayName,
			Balance:     0,
			Status:      models.AccountActive,
		}
		if err := tx.Create(&acc).Error; err != nil {
			return err
		}

		if _, err := audit.Append(tx, audit.Entry{
			ActorID:        in.ActorID,
			Action:         audit.ActionAccountCreated,
			Severity:       models.SeverityInfo,
			TargetResource: "account:" + acc.AccountCode,
			Metadata:       map[string]any{"display_name": acc.DisplayName},
		}); err != nil {
			return err
		}

		created = &acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func GetAccount(accountCode string) (*models.Account, error) {
	var acc models.Account
	err := database.DB.
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

// AdjustBalance is the funding path: positive amounts deposit, negative
// amounts withdraw. Every adjustment is ledger-backed and audited.
func AdjustBalance(actorID, accountCode string, amount int64, note string) (*models.Account, error) {
	if amount == 0 {
		return nil, errors.New("amount must be non-zero")
	}

	ref := uuid.New().String()
	action := audit.ActionDeposit
	if amount < 0 {
		action = audit.ActionWithdraw
	}
	if note == "" {
		if amount > 0 {
			note = "deposit via API"
		} else {
			note = "withdraw via API"
		}
	}

	var updated *models.Account
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		acc, err := lockAccount(tx, accountCode)
		if err != nil {
			return err
		}

		if amount > 0 {
			if _, err := creditAccount(tx, acc, amount, ref, note); err != nil {
				return err
			}
		} else {
			if _, err := debitAccount(tx, acc, -amount, ref, note); err != nil {
				return err
			}
		}

		if _, err := audit.Append(tx, audit.Entry{
			ActorID:        actorID,
			Action:         action,
			Severity:       models.SeverityInfo,
			TargetResource: "account:" + acc.AccountCode,
			Metadata:       map[string]any{"amount": amount, "reference": ref},
		}); err != nil {
			return err
		}

		updated = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
