package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself. Domain error codes come
// through shared.DomainError and are mapped below as-is.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Infrastructure / request errors
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
	"GATEWAY_ERROR":   http.StatusBadGateway,

	// Authentication errors -> 401
	ErrCodeUnauthorized:             http.StatusUnauthorized,
	"INVALID_CREDENTIALS":           http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED":           http.StatusUnauthorized,
	"TOKEN_EXPIRED":                 http.StatusUnauthorized,
	"TOKEN_INVALID":                 http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":             http.StatusUnauthorized,
	"SIGNATURE_VERIFICATION_FAILED": http.StatusUnauthorized,

	// Authorization errors -> 403
	ErrCodeForbidden:      http.StatusForbidden,
	"OWNERSHIP_VIOLATION": http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:        http.StatusNotFound,
	"DUPLICATE_RESOURCE":   http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"INVALID_AMOUNT":      http.StatusUnprocessableEntity,
	"EXCEEDS_OUTSTANDING": http.StatusUnprocessableEntity,
	"ALREADY_DEACTIVATED": http.StatusUnprocessableEntity,
	"ALREADY_ACTIVE":      http.StatusUnprocessableEntity,
	"INVALID_PASSWORD":    http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	"INVALID_INPUT": http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unmapped INVALID_* codes are treated as input validation failures;
// anything else unknown falls back to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
