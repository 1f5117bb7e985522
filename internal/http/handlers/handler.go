package handlers

import (
	"errors"
	"net/http"

	"taskflow/internal/http/middleware"
	"taskflow/internal/logger"
	"taskflow/internal/service"
	"taskflow/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Boards        *service.BoardService
	Tasks         *service.TaskService
	Teams         *service.TeamService
	Comments      *service.CommentService
	Wikis         *service.WikiService
	Milestones    *service.MilestoneService
	Notifications *service.NotificationService
	Audit         *service.AuditService
	Access        *service.AccessService
	Hub           *ws.Hub
}

func getUserID(c *gin.Context) (string, bool) {
	return middleware.GetUserID(c)
}

func getIdentity(c *gin.Context) (service.Identity, bool) {
	return middleware.GetIdentity(c)
}

// respondError maps service sentinel errors to status codes. Anything else
// is logged and surfaced as a generic 500 so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	default:
		logger.Error("request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
