// Package dto defines the JSON envelope every endpoint answers with and the
// mapping from domain error codes to API codes and HTTP statuses.
package dto

import (
	"time"

	"github.com/jewelry/backend/internal/domain/shared"
)

// Response is the envelope. Exactly one of Data and Error is meaningful,
// chosen by Success; Meta accompanies paged lists.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidationDetail is one entry of ERR_VALIDATION details.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
	Value   string `json:"value,omitempty"`
}

type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta adds paging info. A non-positive pageSize is
// reported as the default page size.
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	if pageSize <= 0 {
		pageSize = shared.DefaultPageSize
	}
	size := int64(pageSize)
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: int((total + size - 1) / size),
		},
	}
}

// NewErrorResponse normalizes code, so callers may pass domain codes.
func NewErrorResponse(code, message string) Response {
	return NewErrorResponseWithDetails(code, message, "", nil)
}

func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return NewErrorResponseWithDetails(code, message, requestID, nil)
}

func NewErrorResponseWithDetails(code, message, requestID string, details any) Response {
	return Response{Error: &ErrorInfo{
		Code:      NormalizeErrorCode(code),
		Message:   message,
		RequestID: requestID,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}}
}

func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return NewErrorResponseWithDetails(ErrCodeValidation, message, requestID, details)
}
