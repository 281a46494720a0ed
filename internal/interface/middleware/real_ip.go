package middleware

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxRealIPKey holds the resolved client address.
const CtxRealIPKey = "real_ip"

// proxy headers in trust order; X-Forwarded-For uses its left-most entry
var clientIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// RealIP resolves the client address from proxy headers and stores it under CtxRealIPKey.
// Unparseable header values are skipped; gin's ClientIP is the last resort.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIPKey, resolveIP(c))
		c.Next()
	}
}

func resolveIP(c *gin.Context) string {
	for _, h := range clientIPHeaders {
		v := c.GetHeader(h)
		if v == "" {
			continue
		}
		if first, _, ok := strings.Cut(v, ","); ok {
			v = first
		}
		if addr, err := netip.ParseAddr(strings.TrimSpace(v)); err == nil {
			return addr.Unmap().String()
		}
	}
	return c.ClientIP()
}

// ipFromCtx returns the address set by RealIP, or gin's view of it, or "unknown".
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
