package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/money"
)

type AccountKind string

const (
	AccountKindChecking AccountKind = "CHECKING"
	AccountKindSavings  AccountKind = "SAVINGS"
)

func (k AccountKind) IsValid() bool {
	return k == AccountKindChecking || k == AccountKindSavings
}

// Account is the balance-bearing record. Balance is only ever written by the
// ledger engine, inside a transaction that also appends the matching ledger
// entry; Version guards that write against concurrent interference.
// OverdraftLimit is fixed at creation and never mutated.
type Account struct {
	ID             uuid.UUID
	CustomerID     uuid.UUID
	Kind           AccountKind
	Balance        money.Money
	OverdraftLimit money.Money
	Version        int64
	CreatedAt      time.Time
}

// Floor is the lowest balance the account may reach: -OverdraftLimit.
func (a *Account) Floor() money.Money {
	return a.OverdraftLimit.Neg()
}
