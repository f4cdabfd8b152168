package models

import "net/http"

// Stable error codes returned in every error envelope.
const (
	ErrCodeValidation   = "VALIDATION"
	ErrCodeAccessDenied = "ACCESS_DENIED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL"
)

// APIError is the single error shape every endpoint returns. Field-level
// detail is only populated for VALIDATION errors.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus maps an error code to its response status.
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeAccessDenied:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{Code: ErrCodeValidation, Message: message, Fields: fields}
}

func NewAccessDeniedError() *APIError {
	// Deliberately generic: an unauthorized caller learns nothing about
	// whether the resource exists.
	return &APIError{Code: ErrCodeAccessDenied, Message: "Access denied"}
}

func NewNotFoundError(resource string) *APIError {
	return &APIError{Code: ErrCodeNotFound, Message: resource + " not found"}
}

func NewConflictError(message string) *APIError {
	return &APIError{Code: ErrCodeConflict, Message: message}
}

func NewInternalError(message string) *APIError {
	return &APIError{Code: ErrCodeInternal, Message: message}
}

// ErrorResponse wraps an APIError for the wire.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}
