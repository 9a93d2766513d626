package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pdacosta/banco-ledger/internal/auth"
	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/ledger"
	"github.com/pdacosta/banco-ledger/internal/money"
)

type loanService interface {
	RequestLoan(ctx context.Context, req ledger.LoanRequest) (*domain.Loan, error)
	ListLoans(ctx context.Context, accountID uuid.UUID) ([]domain.Loan, error)
	AccountForCustomer(ctx context.Context, accountID, customerID uuid.UUID) (*domain.Account, error)
}

type LoanHandler struct {
	ledger loanService
}

func NewLoanHandler(ledger loanService) *LoanHandler {
	return &LoanHandler{ledger: ledger}
}

type loanRequest struct {
	AccountID  string `json:"account_id"`
	Principal  string `json:"principal"`
	AnnualRate string `json:"annual_rate"`
}

func (r loanRequest) Validate() []FieldError {
	var errs []FieldError
	if r.AccountID == "" {
		errs = append(errs, FieldError{Field: "account_id", Message: "required"})
	}
	if r.Principal == "" {
		errs = append(errs, FieldError{Field: "principal", Message: "required"})
	}
	if r.AnnualRate == "" {
		errs = append(errs, FieldError{Field: "annual_rate", Message: "required"})
	}
	return errs
}

type loanDTO struct {
	ID          uuid.UUID   `json:"id"`
	AccountID   uuid.UUID   `json:"account_id"`
	Principal   money.Money `json:"principal"`
	Outstanding money.Money `json:"outstanding"`
	AnnualRate  string      `json:"annual_rate"`
	CreatedAt   time.Time   `json:"created_at"`
}

func toLoanDTO(l *domain.Loan) loanDTO {
	return loanDTO{
		ID:          l.ID,
		AccountID:   l.AccountID,
		Principal:   l.Principal,
		Outstanding: l.Outstanding,
		AnnualRate:  l.AnnualRate.String(),
		CreatedAt:   l.CreatedAt,
	}
}

func (h *LoanHandler) Request(w http.ResponseWriter, r *http.Request) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrInvalidToken, nil)
		return
	}

	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "account_id", Message: "must be a UUID"}})
		return
	}

	principal, err := money.FromString(req.Principal)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	rate, err := decimal.NewFromString(req.AnnualRate)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "annual_rate", Message: "must be a decimal number"}})
		return
	}

	if _, err := h.ledger.AccountForCustomer(r.Context(), accountID, customerID); err != nil {
		RespondDomainError(w, err)
		return
	}

	loan, err := h.ledger.RequestLoan(r.Context(), ledger.LoanRequest{
		AccountID:  accountID,
		Principal:  principal,
		AnnualRate: rate,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toLoanDTO(loan))
}

func (h *LoanHandler) ListForAccount(w http.ResponseWriter, r *http.Request) {
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

	if _, err := h.ledger.AccountForCustomer(r.Context(), accountID, customerID); err != nil {
		RespondDomainError(w, err)
		return
	}

	loans, err := h.ledger.ListLoans(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]loanDTO, 0, len(loans))
	for i := range loans {
		dtos = append(dtos, toLoanDTO(&loans[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
