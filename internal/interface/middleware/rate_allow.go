package middleware

import (
	"github.com/gin-gonic/gin"
	"net"
)

// AllowPrivateIP bypasses the rate limit for loopback and RFC 1918 callers,
// keeping health probes and in-cluster traffic out of the counters.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}
