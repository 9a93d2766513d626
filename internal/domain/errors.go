package domain

import (
	"errors"

	"github.com/pdacosta/banco-ledger/internal/money"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrSameAccount        = errors.New("cannot transfer to same account")
	ErrLoanDenied         = errors.New("loan principal exceeds eligibility")
	ErrInvalidAccountKind = errors.New("invalid account kind")
	ErrCustomerExists     = errors.New("customer already exists for this email")
	ErrVersionConflict    = errors.New("account modified concurrently")

	// ErrInvalidAmount is money's sentinel; shared so parse failures and
	// engine-side sign checks are the same error to callers.
	ErrInvalidAmount = money.ErrInvalidAmount
)
