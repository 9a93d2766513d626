package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdacosta/banco-ledger/internal/auth"
	"github.com/pdacosta/banco-ledger/internal/domain"
	"github.com/pdacosta/banco-ledger/internal/logging"
)

type customerRepo interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type AuthHandler struct {
	customers customerRepo
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthHandler(customers customerRepo, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		customers: customers,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	return errs
}

type customerDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("hash password", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	customer := &domain.Customer{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.customers.Create(r.Context(), customer); err != nil {
		RespondDomainError(w, err)
		return
	}

	log.Info("customer registered", "customer_id", customer.ID)
	RespondSuccess(w, http.StatusCreated, customerDTO{
		ID:    customer.ID,
		Name:  customer.Name,
		Email: customer.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "required"})
	}
	return errs
}

type loginResponse struct {
	Token    string      `json:"token"`
	Customer customerDTO `json:"customer"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	customer, err := h.customers.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RespondAppError(w, ErrInvalidCredentials, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(req.Password)); err != nil {
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}

	token, err := auth.GenerateToken(customer.ID, customer.Email, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		logging.FromContext(r.Context()).Error("generate token", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, loginResponse{
		Token: token,
		Customer: customerDTO{
			ID:    customer.ID,
			Name:  customer.Name,
			Email: customer.Email,
		},
	})
}
