package middleware

import (
	"net/netip"

	"github.com/gin-gonic/gin"
)

// AllowFunc reports whether a request skips the rate limiter.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP lets loopback and RFC 1918 / RFC 4193 clients through, e.g. a scraper
// on the internal network polling /debug/vars.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		addr, err := netip.ParseAddr(ipFromCtx(c))
		if err != nil {
			return false
		}
		addr = addr.Unmap()
		return addr.IsLoopback() || addr.IsPrivate()
	}
}
