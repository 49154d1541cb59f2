package handler

import "github.com/jewelry/backend/internal/interfaces/http/dto"

// Response is the untyped envelope shown in the generated API docs.
type Response struct {
	Success bool           `json:"success" example:"true"`
	Data    any            `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// APIResponse is Response with a concrete payload type, for handlers whose
// data shape is worth documenting.
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse documents every failure body.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
