package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// clientIPHeaders are the proxy headers consulted, most specific first.
var clientIPHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// getClientIP returns the caller's address for rate limiting and request logs.
// Header values that do not parse as an IP are skipped.
func getClientIP(c *gin.Context) string {
	for _, h := range clientIPHeaders {
		v := c.GetHeader(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For lists the client first, then each proxy.
		for _, part := range strings.Split(v, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
