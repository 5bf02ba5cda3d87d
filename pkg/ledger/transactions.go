package ledger

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/pkg/models"
	"github.com/finboard/finboard/pkg/store"
)

// RecordTransactionParams carries one money movement to record.
type RecordTransactionParams struct {
	WalletID   uuid.UUID
	CategoryID uuid.UUID
	Type       models.TransactionType
	Amount     decimal.Decimal
	Date       time.Time
	Note       string
	ToWalletID *uuid.UUID
	Fee        decimal.Decimal
}

// RecordTransaction persists a transaction and applies its effect to wallet
// balances: income credits the wallet, expense debits it, and a transfer
// moves amount (plus fee from the source) between two wallets. The owning
// category's running transaction count goes up by one.
func (l *Ledger) RecordTransaction(p RecordTransactionParams) (*models.Transaction, error) {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: transaction amount must be positive, got %s", ErrInvalidAmount, p.Amount)
	}
	if p.Fee.IsNegative() {
		return nil, fmt.Errorf("%w: transfer fee must not be negative, got %s", ErrInvalidAmount, p.Fee)
	}
	if p.Type == models.TransactionTypeTransfer {
		if p.ToWalletID == nil {
			return nil, fmt.Errorf("%w: transfer requires a destination wallet", ErrInvalidAmount)
		}
		if *p.ToWalletID == p.WalletID {
			return nil, fmt.Errorf("%w: transfer source and destination must differ", ErrInvalidAmount)
		}
	}

	wallet, err := l.storage.GetWallet(p.WalletID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	now := l.now()
	tx := &models.Transaction{
		ID:         uuid.New(),
		WalletID:   p.WalletID,
		CategoryID: p.CategoryID,
		Type:       p.Type,
		Amount:     p.Amount,
		Date:       p.Date,
		Note:       p.Note,
		ToWalletID: p.ToWalletID,
		Fee:        p.Fee,
		CreatedAt:  now,
	}
	if err := l.storage.CreateTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	switch p.Type {
	case models.TransactionTypeIncome:
		wallet.Balance = wallet.Balance.Add(p.Amount)
	case models.TransactionTypeExpense:
		wallet.Balance = wallet.Balance.Sub(p.Amount)
	case models.TransactionTypeTransfer:
		wallet.Balance = wallet.Balance.Sub(p.Amount).Sub(p.Fee)
		dest, err := l.storage.GetWallet(*p.ToWalletID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrWalletNotFound
			}
			return nil, err
		}
		dest.Balance = dest.Balance.Add(p.Amount)
		if err := l.storage.UpdateWallet(dest); err != nil {
			return nil, fmt.Errorf("failed to update destination wallet: %w", err)
		}
	}
	if err := l.storage.UpdateWallet(wallet); err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	// The count on the category is display metadata; a failed bump is
	// logged rather than failing the recorded transaction.
	if category, err := l.storage.GetCategory(p.CategoryID); err == nil {
		category.TxCount++
		if err := l.storage.UpdateCategory(category); err != nil {
			log.Printf("Failed to bump transaction count for category %s: %v", p.CategoryID, err)
		}
	}

	return tx, nil
}

// DeleteTransaction removes a transaction and reverses its wallet effects.
func (l *Ledger) DeleteTransaction(id uuid.UUID) error {
	tx, err := l.storage.GetTransaction(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	wallet, err := l.storage.GetWallet(tx.WalletID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if wallet != nil {
		switch tx.Type {
		case models.TransactionTypeIncome:
			wallet.Balance = wallet.Balance.Sub(tx.Amount)
		case models.TransactionTypeExpense:
			wallet.Balance = wallet.Balance.Add(tx.Amount)
		case models.TransactionTypeTransfer:
			wallet.Balance = wallet.Balance.Add(tx.Amount).Add(tx.Fee)
		}
		if err := l.storage.UpdateWallet(wallet); err != nil {
			return fmt.Errorf("failed to update wallet balance: %w", err)
		}
	}
	if tx.Type == models.TransactionTypeTransfer && tx.ToWalletID != nil {
		if dest, err := l.storage.GetWallet(*tx.ToWalletID); err == nil {
			dest.Balance = dest.Balance.Sub(tx.Amount)
			if err := l.storage.UpdateWallet(dest); err != nil {
				return fmt.Errorf("failed to update destination wallet: %w", err)
			}
		}
	}

	if category, err := l.storage.GetCategory(tx.CategoryID); err == nil && category.TxCount > 0 {
		category.TxCount--
		if err := l.storage.UpdateCategory(category); err != nil {
			log.Printf("Failed to lower transaction count for category %s: %v", tx.CategoryID, err)
		}
	}

	return l.storage.DeleteTransaction(id)
}
