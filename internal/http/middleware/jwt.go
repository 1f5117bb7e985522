package middleware

import (
	"net/http"
	"strings"

	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT validates the Bearer token and stores the caller's identity in the
// request context. Tokens come from the external identity provider; only
// the signature and time claims are checked here.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		id, err := service.ParseJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user_id", id.UserID)
		c.Set("user_email", id.Email)
		c.Next()
	}
}

// GetUserID returns the authenticated user id set by JWT.
func GetUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetIdentity returns the full identity set by JWT.
func GetIdentity(c *gin.Context) (service.Identity, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return service.Identity{}, false
	}
	email, _ := c.Get("user_email")
	mail, _ := email.(string)
	return service.Identity{UserID: id, Email: mail}, true
}
