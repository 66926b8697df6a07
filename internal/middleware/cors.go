package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS stamps allow-all headers on every response and answers preflight
// requests uniformly. Anonymous clients call from arbitrary origins, so
// there is no origin allowlist.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-User-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
