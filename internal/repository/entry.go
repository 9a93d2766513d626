package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/domain"
)

const entryColumns = `id, account_id, kind, amount, balance_after, description, created_at`

// EntryRepository is the append-only transaction log. Append is the single
// mutator; nothing here updates or deletes.
type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Append inserts the entry inside the caller's transaction and fills in the
// store-assigned id, which is strictly increasing per account.
func (r *EntryRepository) Append(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO ledger_entries (account_id, kind, amount, balance_after, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		entry.AccountID, entry.Kind, entry.Amount, entry.BalanceAfter,
		entry.Description, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

// ListByAccountID returns up to limit entries, most recent first. Every call
// re-reads durable storage; two calls with no intervening append see the same
// sequence.
func (r *EntryRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries
		 WHERE account_id = $1 ORDER BY id DESC LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountID: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByAccountID: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByAccountID: rows: %w", err)
	}
	return entries, nil
}

func scanEntry(s scanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := s.Scan(
		&e.ID, &e.AccountID, &e.Kind, &e.Amount,
		&e.BalanceAfter, &e.Description, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
