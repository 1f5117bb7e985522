package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// VerifyOrigin rejects state-changing requests whose Origin (or Referer,
// when Origin is absent) does not match a trusted origin. Requests without
// either header pass: non-browser clients do not send them.
func VerifyOrigin(trusted []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(trusted))
	for _, o := range trusted {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			if ref := c.GetHeader("Referer"); ref != "" {
				if u, err := url.Parse(ref); err == nil {
					origin = u.Scheme + "://" + u.Host
				}
			}
		}
		if origin == "" {
			c.Next()
			return
		}

		if _, ok := allowed[strings.TrimRight(origin, "/")]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
			return
		}
		c.Next()
	}
}
