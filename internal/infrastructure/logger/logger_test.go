package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	path := filepath.Join(t.TempDir(), "app.log")
	l, err = New(Config{Level: "warn", Format: "console", Output: path})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = New(Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))

	var ctxRequestID string
	router.GET("/missing", func(c *gin.Context) {
		ctxRequestID = GetRequestID(c.Request.Context())
		c.Set("user_id", "user-1")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/missing?x=1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", ctxRequestID)
	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "x=1", fields["query"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestContextHelpers(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithUserID(ctx, "u-42")

	L(ctx).Info("hello")

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "u-42", entries[0].ContextMap()["user_id"])
	assert.Empty(t, GetTraceID(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, 100*time.Millisecond)
	ctx := WithRequestID(context.Background(), "req-9")
	sqlFn := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), sqlFn, nil)
	assert.Equal(t, 0, recorded.Len())

	gl.Trace(ctx, time.Now().Add(-time.Second), sqlFn, nil)
	slow := recorded.FilterMessage("Slow SQL").All()
	require.Len(t, slow, 1)
	assert.Equal(t, "req-9", slow[0].ContextMap()["request_id"])

	gl.Trace(ctx, time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, recorded.FilterMessage("SQL error").Len())

	gl.Trace(ctx, time.Now(), sqlFn, errors.New("connection reset"))
	assert.Equal(t, 1, recorded.FilterMessage("SQL error").Len())

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sqlFn, errors.New("ignored"))
	assert.Equal(t, 1, recorded.FilterMessage("SQL error").Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
}
