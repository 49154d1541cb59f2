package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/interfaces/http/dto"
)

type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string // addresses or CIDRs; empty allows everyone
}

// SwaggerProtection guards /swagger/*. A disabled UI answers 404 and a
// caller outside AllowedIPs gets 403. With RequireAuth the authChain
// (normally JWT then the admin role check) runs before the docs do.
func SwaggerProtection(cfg SwaggerConfig, authChain ...gin.HandlerFunc) gin.HandlerFunc {
	allowed := parseAllowList(cfg.AllowedIPs)
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		switch {
		case !cfg.Enabled:
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", c.GetString(RequestIDKey)))
			return
		case restricted && !allowed.allows(clientAddr(c)):
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Access to API documentation is restricted", c.GetString(RequestIDKey)))
			return
		}

		if cfg.RequireAuth {
			for _, h := range authChain {
				if h(c); c.IsAborted() {
					return
				}
			}
		}
		c.Next()
	}
}

// allowList holds single addresses as full-length prefixes.
type allowList []netip.Prefix

// parseAllowList skips entries that are neither an address nor a CIDR.
func parseAllowList(entries []string) allowList {
	var list allowList
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if p, err := netip.ParsePrefix(entry); err == nil {
				list = append(list, p.Masked())
			}
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			list = append(list, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return list
}

func (l allowList) allows(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	return slices.ContainsFunc(l, func(p netip.Prefix) bool { return p.Contains(addr) })
}

// clientAddr prefers gin's view, which honours the trusted proxies, and
// falls back to the socket address.
func clientAddr(c *gin.Context) netip.Addr {
	if addr, err := netip.ParseAddr(c.ClientIP()); err == nil {
		return addr
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	addr, _ := netip.ParseAddr(host)
	return addr
}
