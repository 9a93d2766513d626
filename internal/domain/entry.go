package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/money"
)

type EntryKind string

const (
	EntryKindDeposit     EntryKind = "DEPOSIT"
	EntryKindWithdraw    EntryKind = "WITHDRAW"
	EntryKindTransferOut EntryKind = "TRANSFER_OUT"
	EntryKindTransferIn  EntryKind = "TRANSFER_IN"
	EntryKindLoanCredit  EntryKind = "LOAN_CREDIT"
	EntryKindInterest    EntryKind = "INTEREST"
)

// Sign reports how the entry's magnitude applies to the balance: +1 for
// credits, -1 for debits.
func (k EntryKind) Sign() int {
	switch k {
	case EntryKindWithdraw, EntryKindTransferOut:
		return -1
	default:
		return 1
	}
}

// LedgerEntry is one immutable line of an account's ledger. Amount is an
// unsigned magnitude; the direction is implied by Kind. IDs are assigned by
// the store and are strictly increasing within an account, so replaying
// entries in ID order from the first entry's amount reproduces every
// BalanceAfter.
type LedgerEntry struct {
	ID           int64
	AccountID    uuid.UUID
	Kind         EntryKind
	Amount       money.Money
	BalanceAfter money.Money
	Description  string
	CreatedAt    time.Time
}

// Signed returns the entry amount with the sign implied by its kind.
func (e *LedgerEntry) Signed() money.Money {
	if e.Kind.Sign() < 0 {
		return e.Amount.Neg()
	}
	return e.Amount
}
