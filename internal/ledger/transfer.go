package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/logging"
	"github.com/pdacosta/banco-ledger/internal/money"
)

// TransferResult carries both legs of a committed transfer.
type TransferResult struct {
	OutEntry *domain.LedgerEntry
	InEntry  *domain.LedgerEntry
}

// Transfer moves amount between two accounts as one atomic unit: both rows
// are locked in ascending-id order, both balances rewritten and both entries
// appended inside a single transaction. A failed transfer leaves both
// accounts and their ledgers untouched.
func (s *Service) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount money.Money) (*TransferResult, error) {
	log := logging.FromContext(ctx)

	if !amount.IsPositive() {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrInvalidAmount)
	}
	if fromID == toID {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrSameAccount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Transfer: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	source, dest := locked[fromID], locked[toID]

	if source.Balance.Sub(amount).LessThan(source.Floor()) {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrInsufficientFunds)
	}

	now := time.Now().UTC()
	sourceBalance := source.Balance.Sub(amount)
	destBalance := dest.Balance.Add(amount)

	if err := s.accounts.UpdateBalance(ctx, tx, fromID, sourceBalance, source.Version+1); err != nil {
		return nil, fmt.Errorf("Transfer: debit: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, toID, destBalance, dest.Version+1); err != nil {
		return nil, fmt.Errorf("Transfer: credit: %w", err)
	}

	outEntry := &domain.LedgerEntry{
		AccountID:    fromID,
		Kind:         domain.EntryKindTransferOut,
		Amount:       amount,
		BalanceAfter: sourceBalance,
		Description:  fmt.Sprintf("Transfer to account %s", toID),
		CreatedAt:    now,
	}
	if err := s.entries.Append(ctx, tx, outEntry); err != nil {
		return nil, fmt.Errorf("Transfer: out entry: %w", err)
	}

	inEntry := &domain.LedgerEntry{
		AccountID:    toID,
		Kind:         domain.EntryKindTransferIn,
		Amount:       amount,
		BalanceAfter: destBalance,
		Description:  fmt.Sprintf("Transfer from account %s", fromID),
		CreatedAt:    now,
	}
	if err := s.entries.Append(ctx, tx, inEntry); err != nil {
		return nil, fmt.Errorf("Transfer: in entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Transfer: commit: %w", err)
	}

	log.Info("transfer completed",
		"from_account", fromID,
		"to_account", toID,
		"amount", amount,
	)

	s.publishPosted(ctx, outEntry, inEntry)
	return &TransferResult{OutEntry: outEntry, InEntry: inEntry}, nil
}

// lockAccountsInOrder acquires row locks in ascending account-id order so two
// transfers racing in opposite directions between the same pair cannot
// deadlock.
func lockAccountsInOrder(ctx context.Context, tx *sql.Tx, accounts accountRepo, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	result := make(map[uuid.UUID]*domain.Account, len(ids))
	for _, id := range sorted {
		account, err := accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("lockAccountsInOrder: %s: %w", id, domain.ErrAccountNotFound)
			}
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[id] = account
	}
	return result, nil
}
