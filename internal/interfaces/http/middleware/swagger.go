package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SwaggerConfig controls exposure of the API documentation endpoints.
type SwaggerConfig struct {
	Enabled    bool     // Whether the Swagger endpoint is served at all
	AllowedIPs []string // IP whitelist (CIDR notation supported, empty = allow all)
}

// SwaggerProtection guards the Swagger UI. Disabled means 404 for every
// documentation request; a non-empty AllowedIPs list restricts access to
// those addresses or CIDR ranges.
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	allowlist := newIPAllowlist(cfg.AllowedIPs)
	// Restriction keys off the configured entries, so a list of only
	// unparseable entries denies everyone instead of failing open
	restrict := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "API documentation is not available",
			})
			return
		}

		if restrict && !allowlist.contains(clientIP(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Access to API documentation is restricted",
			})
			return
		}

		c.Next()
	}
}

// ipAllowlist matches client addresses against single IPs and CIDR ranges.
type ipAllowlist struct {
	ips  []net.IP
	nets []*net.IPNet
}

// newIPAllowlist parses entries in "192.0.2.1" and "10.0.0.0/8" form.
// Entries that parse as neither are dropped.
func newIPAllowlist(entries []string) *ipAllowlist {
	list := &ipAllowlist{}
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				list.nets = append(list.nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			list.ips = append(list.ips, ip)
		}
	}
	return list
}

func (l *ipAllowlist) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range l.ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range l.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP resolves the request address, honoring gin's trusted proxy
// handling before falling back to RemoteAddr.
func clientIP(c *gin.Context) net.IP {
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return ip
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}
