// Package ledger implements the engine behind every balance-changing
// operation: deposits, withdrawals, transfers, loan issuance and interest
// accrual. Each operation runs as a single database transaction that locks
// the touched account rows, rewrites balances under a version check, and
// appends the matching immutable ledger entries, so a half-applied operation
// is never observable.
package ledger

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/events"
	"github.com/pdacosta/banco-ledger/internal/logging"
	"github.com/pdacosta/banco-ledger/internal/money"
)

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	ListIDsByKind(ctx context.Context, kind domain.AccountKind) ([]uuid.UUID, error)
	Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance money.Money, newVersion int64) error
}

type entryRepo interface {
	Append(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error
	ListByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
}

type loanRepo interface {
	Create(ctx context.Context, tx *sql.Tx, loan *domain.Loan) error
	ListByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.Loan, error)
}

type customerRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

type Service struct {
	accounts  accountRepo
	entries   entryRepo
	loans     loanRepo
	customers customerRepo
	publisher events.Publisher
	db        *sql.DB
}

func NewService(
	accounts accountRepo,
	entries entryRepo,
	loans loanRepo,
	customers customerRepo,
	publisher events.Publisher,
	db *sql.DB,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		accounts:  accounts,
		entries:   entries,
		loans:     loans,
		customers: customers,
		publisher: publisher,
		db:        db,
	}
}

// publishPosted notifies downstream consumers about committed entries.
// Best-effort only: the ledger is already durable at this point.
func (s *Service) publishPosted(ctx context.Context, entries ...*domain.LedgerEntry) {
	log := logging.FromContext(ctx)
	for _, e := range entries {
		event := events.EntryPosted{
			EntryID:      e.ID,
			AccountID:    e.AccountID,
			Kind:         e.Kind,
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			OccurredAt:   e.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, events.TopicEntryPosted, event); err != nil {
			log.Warn("entry event publish failed",
				"entry_id", e.ID,
				"account_id", e.AccountID,
				"error", err,
			)
		}
	}
}
