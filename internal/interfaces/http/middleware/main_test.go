package middleware

import (
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func okHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
