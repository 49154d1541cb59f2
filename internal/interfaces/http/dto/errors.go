package dto

import (
	"net/http"
	"strings"
)

// API error codes. Clients switch on these; the message is for humans.
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeUnavailable  = "ERR_UNAVAILABLE" // a backing service is not configured
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"

	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountDisabled    = "ERR_ACCOUNT_DISABLED"
	ErrCodeTooManyAttempts    = "ERR_TOO_MANY_ATTEMPTS"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
	ErrCodeInUse         = "ERR_IN_USE" // still referenced by other rows

	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeBusinessRule       = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock  = "ERR_INSUFFICIENT_STOCK"
	ErrCodeEmptyCart          = "ERR_EMPTY_CART"
	ErrCodeProductUnavailable = "ERR_PRODUCT_UNAVAILABLE"
)

// ErrorCodeHTTPStatus is the status each API code is sent with.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeUnavailable:  http.StatusServiceUnavailable,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeAccountDisabled:    http.StatusForbidden,
	ErrCodeTooManyAttempts:    http.StatusTooManyRequests,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeInUse:         http.StatusConflict,

	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:          http.StatusUnprocessableEntity,
	ErrCodeProductUnavailable: http.StatusUnprocessableEntity,
}

// GetHTTPStatus looks code up in ErrorCodeHTTPStatus. Field-level domain
// codes (INVALID_EMAIL, INVALID_PRICE, ...) are 400; anything else
// unknown is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates the codes of shared.DomainError values
// raised by the services.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"NOT_IN_CART":          ErrCodeNotFound,
	"UPLOAD_NOT_FOUND":     ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"CATEGORY_IN_USE":      ErrCodeInUse,
	"LOOKUP_IN_USE":        ErrCodeInUse,
	"PRODUCT_IN_USE":       ErrCodeInUse,
	"USER_HAS_ORDERS":      ErrCodeInUse,
	"CONCURRENT_OPERATION": ErrCodeConflict,

	"INVALID_INPUT":    ErrCodeInvalidInput,
	"VALIDATION_ERROR": ErrCodeValidation,
	"BAD_REQUEST":      ErrCodeBadRequest,

	"INVALID_STATE":      ErrCodeInvalidState,
	"INVALID_TRANSITION": ErrCodeInvalidState,
	"ALREADY_ACTIVE":     ErrCodeInvalidState,
	"ALREADY_INACTIVE":   ErrCodeInvalidState,
	"ALREADY_DISABLED":   ErrCodeInvalidState,
	"ALREADY_ARCHIVED":   ErrCodeInvalidState,

	"INSUFFICIENT_STOCK":  ErrCodeInsufficientStock,
	"OUT_OF_STOCK":        ErrCodeInsufficientStock,
	"EMPTY_CART":          ErrCodeEmptyCart,
	"PRODUCT_UNAVAILABLE": ErrCodeProductUnavailable,
	"TOO_MANY_IMAGES":     ErrCodeBusinessRule,
	"CURRENCY_MISMATCH":   ErrCodeBusinessRule,

	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"FORBIDDEN":           ErrCodeForbidden,
	"CANNOT_MODIFY_SELF":  ErrCodeForbidden,
	"INVALID_CREDENTIALS": ErrCodeInvalidCredentials,
	"ACCOUNT_DISABLED":    ErrCodeAccountDisabled,
	"TOO_MANY_ATTEMPTS":   ErrCodeTooManyAttempts,
	"TOKEN_EXPIRED":       ErrCodeTokenExpired,
	"TOKEN_MAX_REFRESH":   ErrCodeTokenExpired,
	"TOKEN_INVALID":       ErrCodeTokenInvalid,
	"TOKEN_REVOKED":       ErrCodeTokenRevoked,
	"RATE_LIMIT_EXCEEDED": ErrCodeRateLimited,

	"INVOICE_UNAVAILABLE": ErrCodeUnavailable,
	"INVOICE_FAILED":      ErrCodeInternal,
	"INTERNAL_ERROR":      ErrCodeInternal,
	"PASSWORD_HASH_ERROR": ErrCodeInternal,
}

// NormalizeErrorCode maps a domain code to its API code. Codes that are
// already API codes, or that have no mapping, pass through.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
