package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/logging"
	"github.com/pdacosta/banco-ledger/internal/money"
)

// A loan may not exceed five times the account's balance at the time of the
// request. Inherited policy, kept as-is.
var loanEligibilityMultiple = decimal.NewFromInt(5)

type LoanRequest struct {
	AccountID  uuid.UUID
	Principal  money.Money
	AnnualRate decimal.Decimal
}

// RequestLoan checks eligibility against the balance read under the account's
// row lock, then records the loan and credits the principal as one atomic
// unit: loan row, balance update and LOAN_CREDIT entry commit together or not
// at all.
func (s *Service) RequestLoan(ctx context.Context, req LoanRequest) (*domain.Loan, error) {
	log := logging.FromContext(ctx)

	if !req.Principal.IsPositive() {
		return nil, fmt.Errorf("RequestLoan: principal: %w", domain.ErrInvalidAmount)
	}
	if req.AnnualRate.IsNegative() {
		return nil, fmt.Errorf("RequestLoan: rate: %w", domain.ErrInvalidAmount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("RequestLoan: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, req.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("RequestLoan: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("RequestLoan: %w", err)
	}

	ceiling := account.Balance.MulRate(loanEligibilityMultiple)
	if req.Principal.GreaterThan(ceiling) {
		return nil, fmt.Errorf("RequestLoan: principal %s exceeds ceiling %s: %w",
			req.Principal, ceiling, domain.ErrLoanDenied)
	}

	now := time.Now().UTC()
	loan := &domain.Loan{
		ID:          uuid.New(),
		AccountID:   req.AccountID,
		Principal:   req.Principal,
		Outstanding: req.Principal,
		AnnualRate:  req.AnnualRate,
		CreatedAt:   now,
	}
	if err := s.loans.Create(ctx, tx, loan); err != nil {
		return nil, fmt.Errorf("RequestLoan: %w", err)
	}

	newBalance := account.Balance.Add(req.Principal)
	if err := s.accounts.UpdateBalance(ctx, tx, req.AccountID, newBalance, account.Version+1); err != nil {
		return nil, fmt.Errorf("RequestLoan: credit: %w", err)
	}

	entry := &domain.LedgerEntry{
		AccountID:    req.AccountID,
		Kind:         domain.EntryKindLoanCredit,
		Amount:       req.Principal,
		BalanceAfter: newBalance,
		Description:  fmt.Sprintf("Loan credit %s", loan.ID),
		CreatedAt:    now,
	}
	if err := s.entries.Append(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("RequestLoan: entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("RequestLoan: commit: %w", err)
	}

	log.Info("loan approved",
		"loan_id", loan.ID,
		"account_id", req.AccountID,
		"principal", req.Principal,
		"annual_rate", req.AnnualRate,
	)

	s.publishPosted(ctx, entry)
	return loan, nil
}

func (s *Service) ListLoans(ctx context.Context, accountID uuid.UUID) ([]domain.Loan, error) {
	loans, err := s.loans.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ListLoans: %w", err)
	}
	return loans, nil
}
