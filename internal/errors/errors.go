// Package errors provides custom error types for the Clinicore API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountNotVerified = &AppError{Code: "ACCOUNT_NOT_VERIFIED", Message: "Account is not verified yet", StatusCode: http.StatusForbidden}
	ErrAccountSuspended   = &AppError{Code: "ACCOUNT_SUSPENDED", Message: "Account has been suspended", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Doctor errors.
var (
	ErrDoctorNotFound = &AppError{Code: "DOCTOR_NOT_FOUND", Message: "Doctor not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A doctor with this email already exists", StatusCode: http.StatusConflict}
	ErrDuplicatePhone = &AppError{Code: "DUPLICATE_PHONE", Message: "This phone number is already in use", StatusCode: http.StatusConflict}
)

// Clinic errors.
var (
	ErrClinicNotFound = &AppError{Code: "CLINIC_NOT_FOUND", Message: "Clinic not found", StatusCode: http.StatusNotFound}
	ErrClinicFull     = &AppError{Code: "CLINIC_FULL", Message: "Clinic has reached its doctor limit", StatusCode: http.StatusConflict}
	ErrAdminNotFound  = &AppError{Code: "ADMIN_NOT_FOUND", Message: "Admin account not found", StatusCode: http.StatusNotFound}
)

// Patient errors.
var (
	ErrPatientNotFound = &AppError{Code: "PATIENT_NOT_FOUND", Message: "Patient not found", StatusCode: http.StatusNotFound}
)

// Visit errors.
var (
	ErrVisitNotFound = &AppError{Code: "VISIT_NOT_FOUND", Message: "Visit not found", StatusCode: http.StatusNotFound}
)

// Appointment errors.
var (
	ErrAppointmentNotFound = &AppError{Code: "APPOINTMENT_NOT_FOUND", Message: "Appointment not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryExists    = &AppError{Code: "CATEGORY_EXISTS", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
	ErrCategoryInUse     = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions or budgets", StatusCode: http.StatusConflict}
	ErrDefaultCategory   = &AppError{Code: "DEFAULT_CATEGORY", Message: "Built-in categories cannot be modified directly", StatusCode: http.StatusBadRequest}
	ErrUnknownDefaultCat = &AppError{Code: "UNKNOWN_DEFAULT_CATEGORY", Message: "Unknown built-in category", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrBudgetExists   = &AppError{Code: "BUDGET_EXISTS", Message: "A budget for this category already exists for this month", StatusCode: http.StatusConflict}
)
