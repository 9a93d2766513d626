package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pdacosta/banco-ledger/internal/money"
)

// Loan records an issued loan. Outstanding starts equal to Principal;
// no repayment flow is exposed, so the two only diverge once one is.
type Loan struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Principal   money.Money
	Outstanding money.Money
	AnnualRate  decimal.Decimal
	CreatedAt   time.Time
}
