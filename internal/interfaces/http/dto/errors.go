package dto

import "net/http"

// Error code constants. Domain errors carry these codes verbatim; the mapping
// below decides the HTTP status for each.

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONCURRENCY_CONFLICT"
)

// Input error codes
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInvalidJSON  = "INVALID_JSON"
)

// Reconciliation error codes
const (
	ErrCodeInvalidState           = "INVALID_STATE"
	ErrCodeInvalidPaymentMethod   = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidDetail          = "INVALID_DETAIL"
	ErrCodeIncompleteDetail       = "INCOMPLETE_DETAIL"
	ErrCodeResponsibilityRequired = "CHANGE_RESPONSIBILITY_REQUIRED"
	ErrCodePartialSumMismatch     = "PARTIAL_SUM_MISMATCH"
	ErrCodeNothingToSave          = "NOTHING_TO_SAVE"
	ErrCodeRateLocked             = "RATE_LOCKED"
	ErrCodeRateUnavailable        = "RATE_UNAVAILABLE"
)

// Receipt error codes
const (
	ErrCodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	ErrCodeFileTooLarge        = "FILE_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Validation failures of the reconciliation invariants -> 422: the request
	// was well-formed but the business state refuses it
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeInvalidPaymentMethod:   http.StatusUnprocessableEntity,
	ErrCodeInvalidDetail:          http.StatusUnprocessableEntity,
	ErrCodeIncompleteDetail:       http.StatusUnprocessableEntity,
	ErrCodeResponsibilityRequired: http.StatusUnprocessableEntity,
	ErrCodePartialSumMismatch:     http.StatusUnprocessableEntity,
	ErrCodeNothingToSave:          http.StatusUnprocessableEntity,
	ErrCodeRateLocked:             http.StatusUnprocessableEntity,
	ErrCodeRateUnavailable:        http.StatusUnprocessableEntity,

	ErrCodeUnsupportedFileType: http.StatusUnsupportedMediaType,
	ErrCodeFileTooLarge:        http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
