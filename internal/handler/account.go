package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pdacosta/banco-ledger/internal/auth"
	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/ledger"
	"github.com/pdacosta/banco-ledger/internal/money"
)

const (
	defaultStatementLimit = 50
	maxStatementLimit     = 500
)

type accountService interface {
	OpenAccount(ctx context.Context, req ledger.OpenAccountRequest) (*domain.Account, error)
	ListCustomerAccounts(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error)
	AccountForCustomer(ctx context.Context, accountID, customerID uuid.UUID) (*domain.Account, error)
	Statement(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
}

type AccountHandler struct {
	ledger accountService
}

func NewAccountHandler(ledger accountService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

type openAccountRequest struct {
	Kind           string `json:"kind"`
	InitialDeposit string `json:"initial_deposit"`
	OverdraftLimit string `json:"overdraft_limit"`
}

func (r openAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Kind == "" {
		errs = append(errs, FieldError{Field: "kind", Message: "required"})
	} else if !domain.AccountKind(r.Kind).IsValid() {
		errs = append(errs, FieldError{Field: "kind", Message: "must be CHECKING or SAVINGS"})
	}
	return errs
}

type accountDTO struct {
	ID             uuid.UUID   `json:"id"`
	CustomerID     uuid.UUID   `json:"customer_id"`
	Kind           string      `json:"kind"`
	Balance        money.Money `json:"balance"`
	OverdraftLimit money.Money `json:"overdraft_limit"`
	CreatedAt      time.Time   `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:             a.ID,
		CustomerID:     a.CustomerID,
		Kind:           string(a.Kind),
		Balance:        a.Balance,
		OverdraftLimit: a.OverdraftLimit,
		CreatedAt:      a.CreatedAt,
	}
}

func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrInvalidToken, nil)
		return
	}

	var req openAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	initial := money.Zero
	if req.InitialDeposit != "" {
		var err error
		if initial, err = money.FromString(req.InitialDeposit); err != nil {
			RespondDomainError(w, err)
			return
		}
	}
	overdraft := money.Zero
	if req.OverdraftLimit != "" {
		var err error
		if overdraft, err = money.FromString(req.OverdraftLimit); err != nil {
			RespondDomainError(w, err)
			return
		}
	}

	account, err := h.ledger.OpenAccount(r.Context(), ledger.OpenAccountRequest{
		CustomerID:     customerID,
		Kind:           domain.AccountKind(req.Kind),
		InitialDeposit: initial,
		OverdraftLimit: overdraft,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrInvalidToken, nil)
		return
	}

	accounts, err := h.ledger.ListCustomerAccounts(r.Context(), customerID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, toAccountDTO(&accounts[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type entryDTO struct {
	ID           int64       `json:"id"`
	AccountID    uuid.UUID   `json:"account_id"`
	Kind         string      `json:"kind"`
	Amount       money.Money `json:"amount"`
	BalanceAfter money.Money `json:"balance_after"`
	Description  string      `json:"description"`
	CreatedAt    time.Time   `json:"created_at"`
}

func toEntryDTO(e *domain.LedgerEntry) entryDTO {
	return entryDTO{
		ID:           e.ID,
		AccountID:    e.AccountID,
		Kind:         string(e.Kind),
		Amount:       e.Amount,
		BalanceAfter: e.BalanceAfter,
		Description:  e.Description,
		CreatedAt:    e.CreatedAt,
	}
}

func (h *AccountHandler) Statement(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownedAccount(w, r)
	if !ok {
		return
	}

	limit := defaultStatementLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxStatementLimit {
			RespondValidationError(w, []FieldError{{Field: "limit", Message: "must be between 1 and 500"}})
			return
		}
		limit = parsed
	}

	entries, err := h.ledger.Statement(r.Context(), account.ID, limit)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]entryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, toEntryDTO(&entries[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

// ownedAccount resolves the {id} path value to an account owned by the
// authenticated customer, writing the error response itself on failure.
func (h *AccountHandler) ownedAccount(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrInvalidToken, nil)
		return nil, false
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "id", Message: "must be a UUID"}})
		return nil, false
	}

	account, err := h.ledger.AccountForCustomer(r.Context(), accountID, customerID)
	if err != nil {
		RespondDomainError(w, err)
		return nil, false
	}
	return account, true
}
