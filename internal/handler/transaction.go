package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/auth"
	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/ledger"
	"github.com/pdacosta/banco-ledger/internal/money"
)

type transactionService interface {
	Deposit(ctx context.Context, accountID uuid.UUID, amount money.Money) (*domain.LedgerEntry, error)
	Withdraw(ctx context.Context, accountID uuid.UUID, amount money.Money) (*domain.LedgerEntry, error)
	Transfer(ctx context.Context, fromID, toID uuid.UUID, amount money.Money) (*ledger.TransferResult, error)
	AccountForCustomer(ctx context.Context, accountID, customerID uuid.UUID) (*domain.Account, error)
}

type TransactionHandler struct {
	ledger transactionService
}

func NewTransactionHandler(ledger transactionService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func (r amountRequest) Validate() []FieldError {
	if r.Amount == "" {
		return []FieldError{{Field: "amount", Message: "required"}}
	}
	return nil
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.postFunds(w, r, h.ledger.Deposit)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.postFunds(w, r, h.ledger.Withdraw)
}

func (h *TransactionHandler) postFunds(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, accountID uuid.UUID, amount money.Money) (*domain.LedgerEntry, error),
) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrInvalidToken, nil)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a UUID"}})
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	amount, err := money.FromString(req.Amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	if _, err := h.ledger.AccountForCustomer(r.Context(), accountID, customerID); err != nil {
		RespondDomainError(w, err)
		return
	}

	entry, err := op(r.Context(), accountID, amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toEntryDTO(entry))
}

type transferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if r.FromAccountID == "" {
		errs = append(errs, FieldError{Field: "from_account_id", Message: "required"})
	}
	if r.ToAccountID == "" {
		errs = append(errs, FieldError{Field: "to_account_id", Message: "required"})
	}
	if r.Amount == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	}
	return errs
}

type transferResponse struct {
	OutEntry entryDTO `json:"out_entry"`
	InEntry  entryDTO `json:"in_entry"`
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrInvalidToken, nil)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	fromID, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "from_account_id", Message: "must be a UUID"}})
		return
	}
	toID, err := uuid.Parse(req.ToAccountID)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "to_account_id", Message: "must be a UUID"}})
		return
	}

	amount, err := money.FromString(req.Amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	// Only the source account must belong to the caller; the destination can
	// be any account in the bank.
	if _, err := h.ledger.AccountForCustomer(r.Context(), fromID, customerID); err != nil {
		RespondDomainError(w, err)
		return
	}

	result, err := h.ledger.Transfer(r.Context(), fromID, toID, amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, transferResponse{
		OutEntry: toEntryDTO(result.OutEntry),
		InEntry:  toEntryDTO(result.InEntry),
	})
}
