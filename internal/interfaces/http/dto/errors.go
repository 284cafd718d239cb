package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed fall through to statusByPrefix.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"INVALID_TOKEN":       http.StatusUnauthorized,

	ErrCodeForbidden:   http.StatusForbidden,
	"USER_DEACTIVATED": http.StatusForbidden,
	"INVALID_ACTOR":    http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeConflict:           http.StatusConflict,
	"ALREADY_EXISTS":          http.StatusConflict,
	"ALREADY_INITIALIZED":     http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"USERNAME_TAKEN":          http.StatusConflict,
	"ROLE_CODE_TAKEN":         http.StatusConflict,

	// Business rule violations
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"NO_ACTIVE_APPROVAL_FLOW": http.StatusUnprocessableEntity,
	"FLOW_MODULE_MISMATCH":    http.StatusUnprocessableEntity,
	"NO_ACTIVE_SERIES":        http.StatusUnprocessableEntity,
	"SERIES_EXHAUSTED":        http.StatusUnprocessableEntity,
	"EXCEEDS_BALANCE":         http.StatusUnprocessableEntity,
	"INSUFFICIENT_CREDIT":     http.StatusUnprocessableEntity,
	"WRONG_ACCOUNT":           http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unknown codes starting with INVALID_ map to 422; everything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasPrefix(code, "UNKNOWN_") {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
