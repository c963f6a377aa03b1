package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panicEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	CorrelationID string `json:"correlation_id"`
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		panicOf interface{}
		logged  string
	}{
		{name: "string panic", panicOf: "nil account in context", logged: `"error":"nil account in context"`},
		{name: "error panic", panicOf: errors.New("installment plan out of range"), logged: `installment plan out of range`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelError}))

			router := gin.New()
			router.Use(CorrelationID())
			router.Use(Recovery(logger))
			router.DELETE("/purchases/:id", func(c *gin.Context) {
				panic(tt.panicOf)
			})

			req := httptest.NewRequest(http.MethodDelete, "/purchases/7", nil)
			req.Header.Set(CorrelationIDHeader, "req-7")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusInternalServerError, rr.Code)
			var body panicEnvelope
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Error.Code)
			assert.Equal(t, "req-7", body.CorrelationID)

			out := logs.String()
			assert.Contains(t, out, `"msg":"Ledger handler panicked"`)
			assert.Contains(t, out, tt.logged)
			assert.Contains(t, out, `"route":"/purchases/:id"`)
			assert.Contains(t, out, `"correlation_id":"req-7"`)
			assert.Contains(t, out, `"stack":`)
		})
	}
}

func TestRecovery_WithoutCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))))
	router.GET("/budgets", func(c *gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/budgets", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotContains(t, body, "correlation_id")
}

func TestRecovery_PassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	router := gin.New()
	router.Use(Recovery(slog.New(slog.NewJSONHandler(&logs, nil))))
	router.GET("/accounts", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/accounts", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, logs.String())
}
