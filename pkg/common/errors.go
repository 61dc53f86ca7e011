package common

import (
	"errors"
	"net/http"
)

// Common error types
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrConflict       = errors.New("resource conflict")
	ErrValidation     = errors.New("validation error")
)

// Machine-readable error codes carried in API responses. The pricing and
// booking taxonomy lives here so handlers and clients agree on the strings.
const (
	CodeInvalidAmount       = "invalid_amount"
	CodeInvalidSpan         = "invalid_span"
	CodeNoApplicableRate    = "no_applicable_rate"
	CodeCouponInvalid       = "coupon_invalid"
	CodeInvalidTransition   = "invalid_transition"
	CodeConcurrencyConflict = "concurrency_conflict"
	CodeNotFound            = "not_found"
	CodeValidation          = "validation_error"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithErrorCode attaches a machine-readable error code.
func (e *AppError) WithErrorCode(errorCode string) *AppError {
	e.ErrorCode = errorCode
	return e
}

// Common error constructors
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:      http.StatusNotFound,
		ErrorCode: CodeNotFound,
		Message:   message,
		Err:       err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Message: message,
		Err:     ErrUnauthorized,
	}
}

func NewBadRequestError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternalServerError(message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     ErrInternalServer,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
		Err:     ErrConflict,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:      http.StatusBadRequest,
		ErrorCode: CodeValidation,
		Message:   message,
		Err:       ErrValidation,
	}
}

// NewUnprocessableError builds a 422 with a domain error code. Used for
// requests that are well-formed but rejected by business rules.
func NewUnprocessableError(errorCode, message string, err error) *AppError {
	return &AppError{
		Code:      http.StatusUnprocessableEntity,
		ErrorCode: errorCode,
		Message:   message,
		Err:       err,
	}
}
