package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/domain"
)

const loanColumns = `id, account_id, principal, outstanding, rate, created_at`

// LoanRepository stores what the engine tells it to store; eligibility is the
// engine's business, not ours.
type LoanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) Create(ctx context.Context, tx *sql.Tx, loan *domain.Loan) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO loans (id, account_id, principal, outstanding, rate, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		loan.ID, loan.AccountID, loan.Principal, loan.Outstanding,
		loan.AnnualRate, loan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *LoanRepository) ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Loan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE account_id = $1 ORDER BY created_at`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountID: %w", err)
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByAccountID: scan: %w", err)
		}
		loans = append(loans, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByAccountID: rows: %w", err)
	}
	return loans, nil
}

func scanLoan(s scanner) (*domain.Loan, error) {
	var l domain.Loan
	err := s.Scan(
		&l.ID, &l.AccountID, &l.Principal, &l.Outstanding,
		&l.AnnualRate, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
