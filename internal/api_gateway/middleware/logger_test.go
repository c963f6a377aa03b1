package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newLoggedRouter(buf *bytes.Buffer, level slog.Level, quiet ...string) *gin.Engine {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))
	router := gin.New()
	router.Use(CorrelationID())
	router.Use(Logger(logger, quiet...))
	return router
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("LogsRequestDetails", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newLoggedRouter(&logBuffer, slog.LevelInfo)
		router.GET("/accounts/:id", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		id := uuid.NewString()
		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+id+"?verbose=1", nil)
		req.Header.Set("User-Agent", "test-agent")
		correlationID := uuid.NewString()
		req.Header.Set(CorrelationIDHeader, correlationID)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		logOutput := logBuffer.String()
		assert.Contains(t, logOutput, `"level":"INFO"`)
		assert.Contains(t, logOutput, `"msg":"HTTP request"`)
		assert.Contains(t, logOutput, `"path":"/accounts/`+id+`?verbose=1"`)
		assert.Contains(t, logOutput, `"route":"/accounts/:id"`)
		assert.Contains(t, logOutput, `"status":200`)
		assert.Contains(t, logOutput, `"user_agent":"test-agent"`)
		assert.Contains(t, logOutput, `"correlation_id":"`+correlationID+`"`)
	})

	t.Run("ClientErrorsLogAtWarn", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newLoggedRouter(&logBuffer, slog.LevelInfo)
		router.POST("/accounts", func(c *gin.Context) {
			c.Status(http.StatusBadRequest)
		})

		req, _ := http.NewRequest(http.MethodPost, "/accounts", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, logBuffer.String(), `"level":"WARN"`)
		assert.Contains(t, logBuffer.String(), `"status":400`)
	})

	t.Run("ServerErrorsLogAtError", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newLoggedRouter(&logBuffer, slog.LevelInfo)
		router.GET("/data/export", func(c *gin.Context) {
			c.Status(http.StatusBadGateway)
		})

		req, _ := http.NewRequest(http.MethodGet, "/data/export", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, logBuffer.String(), `"level":"ERROR"`)
	})

	t.Run("QuietPathsLogAtDebug", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newLoggedRouter(&logBuffer, slog.LevelInfo, "/health")
		router.GET("/health", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Empty(t, logBuffer.String())
	})
}
