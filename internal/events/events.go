// Package events defines the post-commit notification surface of the ledger.
// Publishing is best-effort: a failed publish is logged and never unwinds a
// committed operation.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/money"
)

const TopicEntryPosted = "ledger.entry_posted"

// EntryPosted is emitted once per committed ledger entry.
type EntryPosted struct {
	EntryID      int64            `json:"entry_id"`
	AccountID    uuid.UUID        `json:"account_id"`
	Kind         domain.EntryKind `json:"kind"`
	Amount       money.Money      `json:"amount"`
	BalanceAfter money.Money      `json:"balance_after"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
