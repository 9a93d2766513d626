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

type OpenAccountRequest struct {
	CustomerID     uuid.UUID
	Kind           domain.AccountKind
	InitialDeposit money.Money
	OverdraftLimit money.Money
}

// OpenAccount creates the account and its opening DEPOSIT entry in one
// transaction. The opening entry anchors ledger replay: its amount is the
// account's starting balance.
func (s *Service) OpenAccount(ctx context.Context, req OpenAccountRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("OpenAccount: %q: %w", req.Kind, domain.ErrInvalidAccountKind)
	}
	if req.InitialDeposit.IsNegative() {
		return nil, fmt.Errorf("OpenAccount: initial deposit: %w", domain.ErrInvalidAmount)
	}
	if req.OverdraftLimit.IsNegative() {
		return nil, fmt.Errorf("OpenAccount: overdraft limit: %w", domain.ErrInvalidAmount)
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("OpenAccount: %w", domain.ErrCustomerNotFound)
		}
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uuid.New(),
		CustomerID:     req.CustomerID,
		Kind:           req.Kind,
		Balance:        req.InitialDeposit,
		OverdraftLimit: req.OverdraftLimit,
		Version:        0,
		CreatedAt:      now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("OpenAccount: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	opening := &domain.LedgerEntry{
		AccountID:    account.ID,
		Kind:         domain.EntryKindDeposit,
		Amount:       req.InitialDeposit,
		BalanceAfter: req.InitialDeposit,
		Description:  "Initial deposit",
		CreatedAt:    now,
	}
	if err := s.entries.Append(ctx, tx, opening); err != nil {
		return nil, fmt.Errorf("OpenAccount: opening entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("OpenAccount: commit: %w", err)
	}

	log.Info("account opened",
		"account_id", account.ID,
		"customer_id", account.CustomerID,
		"kind", account.Kind,
		"initial_deposit", req.InitialDeposit,
	)

	s.publishPosted(ctx, opening)
	return account, nil
}

// AccountForCustomer fetches an account and verifies ownership; a foreign
// account is indistinguishable from a missing one.
func (s *Service) AccountForCustomer(ctx context.Context, accountID, customerID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("AccountForCustomer: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("AccountForCustomer: %w", err)
	}
	if account.CustomerID != customerID {
		return nil, fmt.Errorf("AccountForCustomer: %w", domain.ErrAccountNotFound)
	}
	return account, nil
}

func (s *Service) ListCustomerAccounts(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("ListCustomerAccounts: %w", err)
	}
	return accounts, nil
}

// Statement returns up to limit ledger entries, most recent first.
func (s *Service) Statement(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Statement: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("Statement: %w", err)
	}

	entries, err := s.entries.ListByAccountID(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("Statement: %w", err)
	}
	return entries, nil
}

// ListAllAccounts is the admin view over every account.
func (s *Service) ListAllAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAllAccounts: %w", err)
	}
	return accounts, nil
}

// ListAllCustomers is the admin view over every customer.
func (s *Service) ListAllCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAllCustomers: %w", err)
	}
	return customers, nil
}
