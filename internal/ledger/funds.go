package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/logging"
	"github.com/pdacosta/banco-ledger/internal/money"
)

// Deposit credits the account and appends a DEPOSIT entry atomically.
func (s *Service) Deposit(ctx context.Context, accountID uuid.UUID, amount money.Money) (*domain.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("Deposit: %w", domain.ErrInvalidAmount)
	}

	entry, err := s.postEntry(ctx, accountID, domain.EntryKindDeposit, amount, "Deposit", nil)
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	logging.FromContext(ctx).Info("deposit completed",
		"account_id", accountID,
		"amount", amount,
		"entry_id", entry.ID,
	)
	return entry, nil
}

// Withdraw debits the account and appends a WITHDRAW entry atomically. The
// funds check runs against the balance read under the row lock, so two
// concurrent withdrawals can never both pass it against the same stale value.
func (s *Service) Withdraw(ctx context.Context, accountID uuid.UUID, amount money.Money) (*domain.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("Withdraw: %w", domain.ErrInvalidAmount)
	}

	guard := func(account *domain.Account) error {
		if account.Balance.Sub(amount).LessThan(account.Floor()) {
			return domain.ErrInsufficientFunds
		}
		return nil
	}

	entry, err := s.postEntry(ctx, accountID, domain.EntryKindWithdraw, amount, "Withdrawal", guard)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	logging.FromContext(ctx).Info("withdrawal completed",
		"account_id", accountID,
		"amount", amount,
		"entry_id", entry.ID,
	)
	return entry, nil
}

// postEntry is the single-account mutation path shared by deposit, withdraw
// and interest accrual: lock the row, run the guard against the locked
// balance, write the new balance under the version check, append the entry,
// commit. Any failure rolls the whole unit back.
func (s *Service) postEntry(
	ctx context.Context,
	accountID uuid.UUID,
	kind domain.EntryKind,
	amount money.Money,
	description string,
	guard func(*domain.Account) error,
) (*domain.LedgerEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postEntry: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("postEntry: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("postEntry: %w", err)
	}

	if guard != nil {
		if err := guard(account); err != nil {
			return nil, fmt.Errorf("postEntry: %w", err)
		}
	}

	newBalance := account.Balance.Add(amount)
	if kind.Sign() < 0 {
		newBalance = account.Balance.Sub(amount)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, accountID, newBalance, account.Version+1); err != nil {
		return nil, fmt.Errorf("postEntry: %w", err)
	}

	entry := &domain.LedgerEntry{
		AccountID:    accountID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: newBalance,
		Description:  description,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.entries.Append(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("postEntry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postEntry: commit: %w", err)
	}

	s.publishPosted(ctx, entry)
	return entry, nil
}
