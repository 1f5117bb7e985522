package http

import (
	"taskflow/internal/config"
	"taskflow/internal/email"
	"taskflow/internal/http/handlers"
	"taskflow/internal/http/middleware"
	"taskflow/internal/repository"
	"taskflow/internal/service"
	"taskflow/internal/storage"
	"taskflow/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires repositories, services and handlers onto the
// engine. objects may be nil when object storage is not configured;
// attachment endpoints then reject uploads.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, objects *storage.Service, version string) {
	teamRepo := repository.NewTeamRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	wikiRepo := repository.NewWikiRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	mailer := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})

	access := service.NewAccessService(projectRepo, teamRepo)
	audit := service.NewAuditService(auditRepo)
	notifications := service.NewNotificationService(notificationRepo, profileRepo)
	boards := service.NewBoardService(access, taskRepo, columnRepo)
	tasks := service.NewTaskService(access, taskRepo, subtaskRepo, columnRepo, milestoneRepo, projectRepo)
	teams := service.NewTeamService(teamRepo, projectRepo, invitationRepo, profileRepo, access, audit, mailer, cfg.AppURL)
	wikis := service.NewWikiService(access, wikiRepo)
	milestones := service.NewMilestoneService(access, milestoneRepo)
	var objStore service.ObjectStore
	if objects != nil {
		objStore = objects
	}
	comments := service.NewCommentService(access, commentRepo, attachmentRepo, taskRepo, objStore, notifications,
		service.AttachmentPolicy{
			MaxBytes:     cfg.AttachmentMaxBytes,
			AllowedMimes: cfg.AttachmentAllowedMimeTypes,
		})

	h := &handlers.Handler{
		Boards:        boards,
		Tasks:         tasks,
		Teams:         teams,
		Comments:      comments,
		Wikis:         wikis,
		Milestones:    milestones,
		Notifications: notifications,
		Audit:         audit,
		Access:        access,
		Hub:           ws.NewHub(),
	}
	healthHandler := handlers.NewHealthHandler(db, middleware.RedisClient(), version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Live board events
	r.GET("/ws", h.WS(cfg.CSRFTrustedOrigins))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	v1.Use(middleware.VerifyOrigin(cfg.CSRFTrustedOrigins))
	v1.Use(middleware.JWT())

	// per-user creation budgets
	taskCreateRL := middleware.ScopedRateLimit("tasks:create", cfg.WriteRateLimit, cfg.WriteRateWindow)
	wikiCreateRL := middleware.ScopedRateLimit("wiki:create", 20, cfg.WriteRateWindow)
	milestoneCreateRL := middleware.ScopedRateLimit("milestones:create", 20, cfg.WriteRateWindow)

	// Teams and membership
	v1.POST("/teams", h.CreateTeam)
	v1.GET("/teams/:id", h.GetTeam)
	v1.GET("/teams/:id/members", h.ListTeamMembers)
	v1.PATCH("/teams/:id/members/:userId", h.UpdateMemberRole)
	v1.DELETE("/teams/:id/members/:userId", h.RemoveTeamMember)
	v1.POST("/teams/:id/invitations", h.InviteMember)
	v1.GET("/teams/:id/invitations", h.ListPendingInvites)
	v1.GET("/teams/:id/audit", h.ListAuditLog)
	v1.GET("/teams/:id/projects", h.ListProjects)
	v1.POST("/invitations/accept", h.AcceptInvite)

	// Projects
	v1.POST("/projects", h.CreateProject)
	v1.GET("/projects/:id", h.GetProject)
	v1.DELETE("/projects/:id", h.DeleteProject)

	// Board
	v1.GET("/projects/:id/board", h.GetBoard)
	v1.POST("/projects/:id/columns", h.AddColumn)
	v1.POST("/tasks/reorder", h.Reorder)

	// Tasks and subtasks
	v1.POST("/tasks", taskCreateRL, h.CreateTask)
	v1.GET("/tasks/:id", h.GetTask)
	v1.PATCH("/tasks/:id", h.UpdateTask)
	v1.DELETE("/tasks/:id", h.DeleteTask)
	v1.GET("/tasks/:id/subtasks", h.ListSubtasks)
	v1.POST("/tasks/:id/subtasks", h.AddSubtask)
	v1.PATCH("/subtasks/:id", h.UpdateSubtask)
	v1.DELETE("/subtasks/:id", h.DeleteSubtask)

	// Comments, reactions, attachments
	v1.GET("/tasks/:id/comments", h.ListComments)
	v1.POST("/tasks/:id/comments", h.AddComment)
	v1.PATCH("/comments/:id", h.UpdateComment)
	v1.DELETE("/comments/:id", h.DeleteComment)
	v1.POST("/comments/:id/reactions", h.ToggleReaction)
	v1.POST("/comments/:id/attachments", h.UploadAttachment)
	v1.DELETE("/attachments/:id", h.DeleteAttachment)
	v1.GET("/attachments/:id/url", h.AttachmentURL)

	// Milestones
	v1.GET("/projects/:id/milestones", h.ListMilestones)
	v1.POST("/projects/:id/milestones", milestoneCreateRL, h.CreateMilestone)
	v1.PATCH("/milestones/:id", h.SetMilestoneStatus)
	v1.DELETE("/milestones/:id", h.DeleteMilestone)

	// Wiki
	v1.GET("/projects/:id/wiki", h.ListWikiPages)
	v1.POST("/projects/:id/wiki", wikiCreateRL, h.CreateWikiPage)
	v1.GET("/wiki/:id", h.GetWikiPage)
	v1.PUT("/wiki/:id", h.UpdateWikiPage)
	v1.DELETE("/wiki/:id", h.DeleteWikiPage)
	v1.GET("/wiki/:id/revisions", h.ListWikiRevisions)

	// Notifications and mentions
	v1.GET("/notifications", h.ListNotifications)
	v1.PATCH("/notifications/:id", h.UpdateNotification)
	v1.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	v1.GET("/projects/:id/mentions", h.MentionCandidates)
}
