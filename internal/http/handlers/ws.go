package handlers

import (
	"net/http"

	"taskflow/internal/logger"
	"taskflow/internal/service"
	"taskflow/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades the connection and subscribes the caller to a project's
// board events. The token travels in the query string because browsers
// cannot set headers on websocket handshakes.
func (h *Handler) WS(trustedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(trustedOrigins))
	for _, o := range trustedOrigins {
		allowed[o] = struct{}{}
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			_, ok := allowed[r.Header.Get("Origin")]
			return ok
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		id, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		projectID := c.Query("project")
		if projectID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project required"})
			return
		}

		ctx := c.Request.Context()
		if !h.Access.CanAccessProject(ctx, projectID, id.UserID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := ws.NewClient(id.UserID, projectID, conn, h.Hub)
		go client.Run()
	}
}
