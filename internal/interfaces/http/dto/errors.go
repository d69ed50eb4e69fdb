package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeUnavailable is used when an optional capability is not configured
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidDate is used for malformed or out-of-range business dates
	ErrCodeInvalidDate = "ERR_INVALID_DATE"
	// ErrCodeInvalidDateRange is used when a from/to pair is inverted or too wide
	ErrCodeInvalidDateRange = "ERR_INVALID_DATE_RANGE"
	// ErrCodeInvalidAmount is used for negative or non-positive amounts
	ErrCodeInvalidAmount = "ERR_INVALID_AMOUNT"
	// ErrCodeInvalidCurrency is used when an amount does not fit the currency
	ErrCodeInvalidCurrency = "ERR_INVALID_CURRENCY"
	// ErrCodeInvalidPaymentMethod is used for unknown payment channels
	ErrCodeInvalidPaymentMethod = "ERR_INVALID_PAYMENT_METHOD"
	// ErrCodeInvalidTarget is used for a non-positive settlement total
	ErrCodeInvalidTarget = "ERR_INVALID_TARGET"
	// ErrCodeInvalidTenant is used when the tenant header is malformed
	ErrCodeInvalidTenant = "ERR_INVALID_TENANT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeNoPayments is used when confirming a settlement without payments
	ErrCodeNoPayments = "ERR_NO_PAYMENTS"
	// ErrCodeSettlementIncomplete is used when a settlement does not cover its total
	ErrCodeSettlementIncomplete = "ERR_SETTLEMENT_INCOMPLETE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeInvalidDate:          http.StatusBadRequest,
	ErrCodeInvalidDateRange:     http.StatusBadRequest,
	ErrCodeInvalidAmount:        http.StatusBadRequest,
	ErrCodeInvalidCurrency:      http.StatusBadRequest,
	ErrCodeInvalidPaymentMethod: http.StatusBadRequest,
	ErrCodeInvalidTarget:        http.StatusBadRequest,
	ErrCodeInvalidTenant:        http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:         http.StatusUnprocessableEntity,
	ErrCodeNoPayments:           http.StatusUnprocessableEntity,
	ErrCodeSettlementIncomplete: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_STATE":          ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"INVALID_DATE":           ErrCodeInvalidDate,
	"INVALID_DATE_RANGE":     ErrCodeInvalidDateRange,
	"INVALID_AMOUNT":         ErrCodeInvalidAmount,
	"INVALID_CURRENCY":       ErrCodeInvalidCurrency,
	"INVALID_PAYMENT_METHOD": ErrCodeInvalidPaymentMethod,
	"INVALID_TARGET":         ErrCodeInvalidTarget,
	"INVALID_TENANT":         ErrCodeInvalidTenant,
	"INVALID_NOTES":          ErrCodeValidation,
	"INVALID_DESCRIPTION":    ErrCodeValidation,
	"INVALID_SALE_REFERENCE": ErrCodeValidation,
	"NO_PAYMENTS":            ErrCodeNoPayments,
	"SETTLEMENT_INCOMPLETE":  ErrCodeSettlementIncomplete,
	"EXPORT_UNAVAILABLE":     ErrCodeUnavailable,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unmapped domain codes are business rule violations.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeBusinessRule
}
