// Package apperror provides the error taxonomy shared by all services.
// Validation failures are surfaced before any mutation, so a rejected
// operation always leaves the stored collections untouched.
package apperror

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrEmptyInvoice       = errors.New("invoice has no items")
	ErrDuplicateItem      = errors.New("product already added to invoice")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError wraps multiple field errors from request validation.
type ValidationError struct {
	Detail string
	Fields map[string]string
}

func (e *ValidationError) Error() string { return e.Detail }

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
