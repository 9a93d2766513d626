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
)

// interestRetries bounds the per-account retry on a detected concurrent
// modification before the failure is reported in the run result.
const interestRetries = 3

// InterestFailure reports one account the interest run could not update.
type InterestFailure struct {
	AccountID uuid.UUID `json:"account_id"`
	Reason    string    `json:"reason"`
}

// InterestRun summarizes a monthly accrual batch.
type InterestRun struct {
	Rate     decimal.Decimal   `json:"rate"`
	Applied  int               `json:"applied"`
	Failures []InterestFailure `json:"failures,omitempty"`
}

// ApplyMonthlyInterest credits balance*rate (rounded half-up to cents) to
// every savings account. Each account is its own atomic unit: locked,
// updated, logged and committed independently, so one failure never unwinds
// or blocks the rest of the batch, and unrelated traffic only ever contends
// on the single account currently being accrued.
func (s *Service) ApplyMonthlyInterest(ctx context.Context, rate decimal.Decimal) (*InterestRun, error) {
	log := logging.FromContext(ctx)

	if rate.IsNegative() {
		return nil, fmt.Errorf("ApplyMonthlyInterest: rate: %w", domain.ErrInvalidAmount)
	}

	ids, err := s.accounts.ListIDsByKind(ctx, domain.AccountKindSavings)
	if err != nil {
		return nil, fmt.Errorf("ApplyMonthlyInterest: %w", err)
	}

	run := &InterestRun{Rate: rate}
	description := fmt.Sprintf("Monthly interest @%s", rate)

	for _, id := range ids {
		if err := s.accrueAccount(ctx, id, rate, description); err != nil {
			log.Warn("interest accrual failed",
				"account_id", id,
				"error", err,
			)
			run.Failures = append(run.Failures, InterestFailure{
				AccountID: id,
				Reason:    err.Error(),
			})
			continue
		}
		run.Applied++
	}

	log.Info("interest run completed",
		"rate", rate,
		"applied", run.Applied,
		"failed", len(run.Failures),
	)
	return run, nil
}

// accrueAccount applies one account's interest, retrying a bounded number of
// times if the version check trips.
func (s *Service) accrueAccount(ctx context.Context, accountID uuid.UUID, rate decimal.Decimal, description string) error {
	var err error
	for attempt := 0; attempt < interestRetries; attempt++ {
		err = s.tryAccrue(ctx, accountID, rate, description)
		if err == nil || !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
	}
	return err
}

// tryAccrue computes the interest from the balance read under the row lock,
// so the accrued amount can never come from a stale snapshot.
func (s *Service) tryAccrue(ctx context.Context, accountID uuid.UUID, rate decimal.Decimal, description string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("tryAccrue: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		// Gone since listing; nothing to accrue.
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("tryAccrue: %w", err)
	}

	interest := account.Balance.MulRate(rate)
	newBalance := account.Balance.Add(interest)

	if err := s.accounts.UpdateBalance(ctx, tx, accountID, newBalance, account.Version+1); err != nil {
		return fmt.Errorf("tryAccrue: %w", err)
	}

	entry := &domain.LedgerEntry{
		AccountID:    accountID,
		Kind:         domain.EntryKindInterest,
		Amount:       interest,
		BalanceAfter: newBalance,
		Description:  description,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.entries.Append(ctx, tx, entry); err != nil {
		return fmt.Errorf("tryAccrue: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tryAccrue: commit: %w", err)
	}

	s.publishPosted(ctx, entry)
	return nil
}
