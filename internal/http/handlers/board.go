package handlers

import (
	"net/http"

	"taskflow/internal/domain"
	"taskflow/internal/http/middleware"
	"taskflow/internal/ws"

	"github.com/gin-gonic/gin"
)

// Reorder applies a full board arrangement. The body carries every column
// with its task ids in desired order; positions are recomputed server-side.
func (h *Handler) Reorder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req domain.ReorderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Boards.Reorder(ctx, userID, req); err != nil {
		middleware.ReorderCommits.WithLabelValues("error").Inc()
		respondError(c, err)
		return
	}

	middleware.ReorderCommits.WithLabelValues("ok").Inc()
	h.Hub.Broadcast(ws.Event{
		Type:      ws.EventBoardReordered,
		ProjectID: req.ProjectID,
		ActorID:   userID,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetBoard returns the project's columns with tasks in display order. The
// optional milestone query param filters tasks to one milestone.
func (h *Handler) GetBoard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx := c.Request.Context()
	columns, err := h.Boards.Board(ctx, userID, c.Param("id"), c.Query("milestone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

// AddColumn appends a column to the board.
func (h *Handler) AddColumn(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	projectID := c.Param("id")
	col, err := h.Boards.AddColumn(ctx, userID, projectID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.Broadcast(ws.Event{
		Type:      ws.EventColumnCreated,
		ProjectID: projectID,
		ActorID:   userID,
		Payload:   col,
	})
	c.JSON(http.StatusCreated, col)
}
