package handlers

import (
	"net/http"

	"taskflow/internal/domain"
	"taskflow/internal/repository"
	"taskflow/internal/service"
	"taskflow/internal/ws"

	"github.com/gin-gonic/gin"
)

// CreateTask appends a task to a column.
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		ProjectID   string  `json:"projectId" binding:"required,uuid"`
		ColumnID    string  `json:"columnId" binding:"required,uuid"`
		Title       string  `json:"title" binding:"required"`
		Description *string `json:"description"`
		Priority    string  `json:"priority"`
		Status      string  `json:"status"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	task, err := h.Tasks.Create(ctx, userID, service.CreateTaskInput{
		ProjectID:   req.ProjectID,
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		Status:      domain.TaskStatus(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.Broadcast(ws.Event{
		Type:      ws.EventTaskCreated,
		ProjectID: task.ProjectID,
		ActorID:   userID,
		Payload:   task,
	})
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx := c.Request.Context()
	task, err := h.Tasks.Get(ctx, userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial edit. Explicit nulls clear the optional
// fields.
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		ClearDesc   bool    `json:"clearDescription"`
		Priority    *string `json:"priority"`
		Status      *string `json:"status"`
		AssigneeID  *string `json:"assigneeId"`
		ClearAssign bool    `json:"clearAssignee"`
		MilestoneID *string `json:"milestoneId"`
		ClearMilest bool    `json:"clearMilestone"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	u := repository.TaskUpdates{
		Title:       req.Title,
		Description: req.Description,
		ClearDesc:   req.ClearDesc,
		AssigneeID:  req.AssigneeID,
		ClearAssign: req.ClearAssign,
		MilestoneID: req.MilestoneID,
		ClearMilest: req.ClearMilest,
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		u.Priority = &p
	}
	if req.Status != nil {
		st := domain.TaskStatus(*req.Status)
		u.Status = &st
	}

	ctx := c.Request.Context()
	task, err := h.Tasks.Update(ctx, userID, c.Param("id"), u)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Hub.Broadcast(ws.Event{
		Type:      ws.EventTaskUpdated,
		ProjectID: task.ProjectID,
		ActorID:   userID,
		Payload:   task,
	})
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx := c.Request.Context()
	taskID := c.Param("id")
	task, err := h.Tasks.Get(ctx, userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Tasks.Delete(ctx, userID, taskID); err != nil {
		respondError(c, err)
		return
	}

	h.Hub.Broadcast(ws.Event{
		Type:      ws.EventTaskDeleted,
		ProjectID: task.ProjectID,
		ActorID:   userID,
		Payload:   gin.H{"id": taskID},
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) ListSubtasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx := c.Request.Context()
	subtasks, err := h.Tasks.ListSubtasks(ctx, userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtasks": subtasks})
}

func (h *Handler) AddSubtask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	sub, err := h.Tasks.AddSubtask(ctx, userID, c.Param("id"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// UpdateSubtask edits a subtask's title, done flag, or both.
func (h *Handler) UpdateSubtask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req struct {
		Title *string `json:"title"`
		Done  *bool   `json:"done"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Tasks.UpdateSubtask(ctx, userID, c.Param("id"), req.Title, req.Done); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) DeleteSubtask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Tasks.DeleteSubtask(ctx, userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
