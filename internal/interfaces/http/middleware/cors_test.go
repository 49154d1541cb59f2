package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/products", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS_DefaultAllowsNoOrigin(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/products", okHandler)

	w := corsRequest(router, http.MethodGet, "http://elsewhere.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = corsRequest(router, http.MethodOptions, "http://elsewhere.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSWithConfig(t *testing.T) {
	router := gin.New()
	router.Use(CORSWithConfig(CORSConfig{
		AllowOrigins:     []string{"https://shop.example", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}))
	router.GET("/products", okHandler)

	t.Run("whitelisted origin", func(t *testing.T) {
		w := corsRequest(router, http.MethodGet, "http://localhost:5173")
		h := w.Header()
		assert.Equal(t, "http://localhost:5173", h.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", h.Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", h.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", h.Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "X-Request-ID", h.Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "3600", h.Get("Access-Control-Max-Age"))
		assert.Equal(t, "Origin", h.Get("Vary"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		w := corsRequest(router, http.MethodGet, "http://evil.example")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin request carries no Origin", func(t *testing.T) {
		w := corsRequest(router, http.MethodGet, "")
		assert.Equal(t, "ok", w.Body.String())
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := corsRequest(router, http.MethodOptions, "https://shop.example")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig_WildcardDropsCredentials(t *testing.T) {
	router := gin.New()
	router.Use(CORSWithConfig(CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true}))
	router.GET("/products", okHandler)

	w := corsRequest(router, http.MethodGet, "http://anything.example")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
