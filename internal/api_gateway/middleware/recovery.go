package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery answers a panicking ledger handler with a 500. Workspace locks are
// released by deferred unlocks, so the process keeps serving afterwards.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error("Ledger handler panicked",
				"error", r,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"path", c.Request.URL.Path,
				"correlation_id", GetCorrelationID(c),
				"stack", string(debug.Stack()),
			)
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "The ledger request could not be completed")
		}()
		c.Next()
	}
}
