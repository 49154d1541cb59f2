package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/interfaces/http/dto"
)

const ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

// BodyLimit refuses bodies over maxBytes. A declared Content-Length over
// the limit is rejected with 413 before the handler runs; a chunked body is
// cut off by the reader, which the handler sees as a read error.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			resp := dto.NewErrorResponseWithRequestID(ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size", c.GetString(RequestIDKey))
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
