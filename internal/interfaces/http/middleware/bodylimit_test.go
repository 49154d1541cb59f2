package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(BodyLimit(64))
	router.GET("/products", func(c *gin.Context) { c.String(http.StatusOK, "list") })
	router.POST("/contact", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "unreadable body")
			return
		}
		c.String(http.StatusOK, "read %d", len(body))
	})

	tests := []struct {
		name          string
		method        string
		path          string
		body          string
		contentLength int64
		status        int
		contains      string
	}{
		{"small json", http.MethodPost, "/contact", `{"message":"hello"}`, 19, http.StatusOK, "read 19"},
		{"exactly at the limit", http.MethodPost, "/contact", strings.Repeat("a", 64), 64, http.StatusOK, "read 64"},
		{"declared length over the limit", http.MethodPost, "/contact", strings.Repeat("a", 65), 65, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge},
		{"chunked body over the limit", http.MethodPost, "/contact", strings.Repeat("a", 500), -1, http.StatusBadRequest, "unreadable body"},
		{"no body", http.MethodGet, "/products", "", 0, http.StatusOK, "list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}
