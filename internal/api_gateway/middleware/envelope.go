package middleware

import "github.com/gin-gonic/gin"

// abortWithError stops the chain with the error envelope the ledger handlers
// use, so clients parse middleware rejections the same way.
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if id := GetCorrelationID(c); id != "" {
		body["correlation_id"] = id
	}
	c.AbortWithStatusJSON(status, body)
}
