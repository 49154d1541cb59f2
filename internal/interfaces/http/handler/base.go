package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/jewelry/backend/internal/application/identity"
	"github.com/jewelry/backend/internal/domain/shared"
	"github.com/jewelry/backend/internal/infrastructure/logger"
	"github.com/jewelry/backend/internal/interfaces/http/dto"
	"github.com/jewelry/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler is embedded by every handler for the response envelope and
// for turning service errors into API errors.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.GetJWTUserID(c)
	if raw == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(raw)
}

func (h *BaseHandler) Success(c *gin.Context, data any) { h.send(c, http.StatusOK, data) }
func (h *BaseHandler) Created(c *gin.Context, data any) { h.send(c, http.StatusCreated, data) }
func (h *BaseHandler) NoContent(c *gin.Context)         { c.Status(http.StatusNoContent) }

func (h *BaseHandler) send(c *gin.Context, status int, data any) {
	c.JSON(status, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 with pagination meta.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Paginated sends one page of a listing.
func Paginated[T any](h *BaseHandler, c *gin.Context, page *shared.Paginated[T]) {
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Error writes the error envelope with the caller's request id.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError reports a binding or validation failure with per-field details.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError maps a service error onto the API. Domain errors keep their
// message; anything else is logged and hidden behind a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	var (
		loginErr  *appidentity.LoginError
		domainErr *shared.DomainError
	)
	switch {
	case errors.As(err, &loginErr):
		h.loginFailed(c, loginErr, requestID)
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
	default:
		logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An unexpected error occurred", requestID))
	}
}

// loginFailed tells the client how many attempts remain before the email
// is locked, or how long the lock lasts.
func (h *BaseHandler) loginFailed(c *gin.Context, err *appidentity.LoginError, requestID string) {
	code := dto.NormalizeErrorCode(err.Code)
	details := gin.H{"remaining_attempts": err.RemainingAttempts}
	if err.RetryAfter > 0 {
		seconds := int64(math.Ceil(err.RetryAfter.Seconds()))
		details = gin.H{"retry_after_seconds": seconds}
		c.Header("Retry-After", strconv.FormatInt(seconds, 10))
	}
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithDetails(code, err.Message, requestID, details))
}

// currentUser returns the authenticated caller or writes a 401.
func (h *BaseHandler) currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// int64Param accepts positive ids only.
func (h *BaseHandler) int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// intQuery returns def for a missing, malformed or non-positive value.
func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
