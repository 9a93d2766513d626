package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/ledger"
)

type adminService interface {
	ApplyMonthlyInterest(ctx context.Context, rate decimal.Decimal) (*ledger.InterestRun, error)
	ListAllCustomers(ctx context.Context) ([]domain.Customer, error)
	ListAllAccounts(ctx context.Context) ([]domain.Account, error)
}

type AdminHandler struct {
	ledger adminService
}

func NewAdminHandler(ledger adminService) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

type interestRunRequest struct {
	MonthlyRate string `json:"monthly_rate"`
}

func (h *AdminHandler) RunInterest(w http.ResponseWriter, r *http.Request) {
	var req interestRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if req.MonthlyRate == "" {
		RespondValidationError(w, []FieldError{{Field: "monthly_rate", Message: "required"}})
		return
	}

	rate, err := decimal.NewFromString(req.MonthlyRate)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "monthly_rate", Message: "must be a decimal number"}})
		return
	}

	run, err := h.ledger.ApplyMonthlyInterest(r.Context(), rate)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, run)
}

type adminCustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.ledger.ListAllCustomers(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]adminCustomerDTO, 0, len(customers))
	for _, c := range customers {
		dtos = append(dtos, adminCustomerDTO{
			ID:        c.ID,
			Name:      c.Name,
			Email:     c.Email,
			CreatedAt: c.CreatedAt,
		})
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.ledger.ListAllAccounts(r.Context())
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
