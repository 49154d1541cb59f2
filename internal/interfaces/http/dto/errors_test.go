package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Domain codes raised by the shop services and the status a client sees.
func TestDomainCodesReachTheRightStatus(t *testing.T) {
	tests := []struct {
		domainCode string
		apiCode    string
		status     int
	}{
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{"OUT_OF_STOCK", ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{"EMPTY_CART", ErrCodeEmptyCart, http.StatusUnprocessableEntity},
		{"NOT_IN_CART", ErrCodeNotFound, http.StatusNotFound},
		{"PRODUCT_UNAVAILABLE", ErrCodeProductUnavailable, http.StatusUnprocessableEntity},
		{"CATEGORY_IN_USE", ErrCodeInUse, http.StatusConflict},
		{"LOOKUP_IN_USE", ErrCodeInUse, http.StatusConflict},
		{"INVALID_TRANSITION", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"TOO_MANY_IMAGES", ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{"INVALID_CREDENTIALS", ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{"ACCOUNT_DISABLED", ErrCodeAccountDisabled, http.StatusForbidden},
		{"TOO_MANY_ATTEMPTS", ErrCodeTooManyAttempts, http.StatusTooManyRequests},
		{"TOKEN_REVOKED", ErrCodeTokenRevoked, http.StatusUnauthorized},
		{"TOKEN_MAX_REFRESH", ErrCodeTokenExpired, http.StatusUnauthorized},
		{"CANNOT_MODIFY_SELF", ErrCodeForbidden, http.StatusForbidden},
		{"INVOICE_UNAVAILABLE", ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"RATE_LIMIT_EXCEEDED", ErrCodeRateLimited, http.StatusTooManyRequests},
		{"CONCURRENT_OPERATION", ErrCodeConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.domainCode, func(t *testing.T) {
			code := NormalizeErrorCode(tt.domainCode)
			assert.Equal(t, tt.apiCode, code)
			assert.Equal(t, tt.status, GetHTTPStatus(code))
		})
	}
}

func TestGetHTTPStatus_Fallbacks(t *testing.T) {
	// field-level codes are never normalized but are still client errors
	for _, code := range []string{"INVALID_EMAIL", "INVALID_PRICE", "INVALID_SLUG", "INVALID_RATING"} {
		assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(code), code)
		assert.Equal(t, code, NormalizeErrorCode(code), code)
	}

	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ODD"))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(""))
	assert.Equal(t, "SOMETHING_ODD", NormalizeErrorCode("SOMETHING_ODD"))
}

func TestNormalizeErrorCode_Idempotent(t *testing.T) {
	for domainCode := range DomainErrorCodeMapping {
		once := NormalizeErrorCode(domainCode)
		assert.Equal(t, once, NormalizeErrorCode(once), domainCode)
	}
}

func TestEveryMappedCodeHasAStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "%s normalizes to %s which has no status", domainCode, apiCode)
	}
	for apiCode, status := range ErrorCodeHTTPStatus {
		assert.True(t, strings.HasPrefix(apiCode, "ERR_"), apiCode)
		assert.GreaterOrEqual(t, status, 400, apiCode)
	}
}

func TestErrorResponses(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		before := time.Now()
		resp := NewErrorResponse("EMPTY_CART", "cart is empty")

		assert.False(t, resp.Success)
		assert.Nil(t, resp.Data)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeEmptyCart, resp.Error.Code)
		assert.Equal(t, "cart is empty", resp.Error.Message)
		assert.Empty(t, resp.Error.RequestID)
		assert.False(t, resp.Error.Timestamp.Before(before))
	})

	t.Run("login throttle details", func(t *testing.T) {
		details := map[string]any{"retry_after_seconds": 900}
		resp := NewErrorResponseWithDetails("TOO_MANY_ATTEMPTS", "try again later", "req-7", details)

		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeTooManyAttempts, resp.Error.Code)
		assert.Equal(t, "req-7", resp.Error.RequestID)
		assert.Equal(t, details, resp.Error.Details)
	})

	t.Run("validation", func(t *testing.T) {
		resp := NewValidationErrorResponse("Validation failed", "req-8", []ValidationDetail{
			{Field: "quantity", Message: "must be at least 1", Tag: "min", Value: "0"},
		})

		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		fields, ok := resp.Error.Details.([]ValidationDetail)
		require.True(t, ok)
		assert.Equal(t, "quantity", fields[0].Field)
		assert.Equal(t, "min", fields[0].Tag)
	})
}

func TestErrorResponseWireShape(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "product not found", "req-9")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))

	assert.Equal(t, false, wire["success"])
	assert.NotContains(t, wire, "data")
	assert.NotContains(t, wire, "meta")

	errObj, ok := wire["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, errObj["code"])
	assert.Equal(t, "product not found", errObj["message"])
	assert.Equal(t, "req-9", errObj["request_id"])
	assert.NotContains(t, errObj, "details")
	assert.Contains(t, errObj, "timestamp")
}

func TestSuccessResponses(t *testing.T) {
	resp := NewSuccessResponse(map[string]int{"orders": 3})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)

	tests := []struct {
		name      string
		total     int64
		pageSize  int
		wantSize  int
		wantPages int
	}{
		{"empty catalog", 0, 12, 12, 0},
		{"one short page", 5, 12, 12, 1},
		{"exact pages", 24, 12, 12, 2},
		{"trailing partial page", 25, 12, 12, 3},
		{"zero size defaults", 45, 0, 20, 3},
		{"negative size defaults", 45, -4, 20, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta([]string{}, tt.total, 2, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, tt.total, resp.Meta.Total)
			assert.Equal(t, 2, resp.Meta.Page)
			assert.Equal(t, tt.wantSize, resp.Meta.PageSize)
			assert.Equal(t, tt.wantPages, resp.Meta.TotalPages)
		})
	}
}
