package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrForbidden          = &AppError{http.StatusForbidden, "FORBIDDEN", "Not allowed"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount      = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive with at most 2 decimal places"}
	ErrInvalidAccountKind = &AppError{http.StatusBadRequest, "INVALID_ACCOUNT_KIND", "Account kind must be CHECKING or SAVINGS"}
	ErrAccountNotFound    = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrInsufficientFunds  = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	ErrSameAccount        = &AppError{http.StatusUnprocessableEntity, "SAME_ACCOUNT", "Cannot transfer to the same account"}
	ErrLoanDenied         = &AppError{http.StatusUnprocessableEntity, "LOAN_DENIED", "Loan principal exceeds eligibility"}
	ErrCustomerExists     = &AppError{http.StatusConflict, "CUSTOMER_ALREADY_EXISTS", "A customer with this email already exists"}
	ErrVersionConflict    = &AppError{http.StatusConflict, "CONCURRENT_MODIFICATION", "Account was modified concurrently, please retry"}
)
