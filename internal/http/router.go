package http

import (
	"github.com/gin-gonic/gin"

	types "github.com/nooch/nooch-backend/internal/domain"
	httpH "github.com/nooch/nooch-backend/internal/http/handlers"
	httpMW "github.com/nooch/nooch-backend/internal/http/middleware"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler         *httpH.AuthHandler
	ClientHandler       *httpH.ClientHandler
	RiskHandler         *httpH.RiskHandler
	ApprovalHandler     *httpH.ApprovalHandler
	MessageHandler      *httpH.MessageHandler
	MethodologyHandler  *httpH.MethodologyHandler
	CheckinHandler      *httpH.CheckinHandler
	PhotoHandler        *httpH.PhotoHandler
	NotificationHandler *httpH.NotificationHandler
	RealtimeHandler     *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/me", cfg.AuthHandler.GetMe)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Notifications
		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.List)
			protected.GET("/notifications/unread-count", cfg.NotificationHandler.UnreadCount)
			protected.POST("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
			protected.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)
		}
	}

	coach := protected.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			coach.Use(cfg.AuthMiddleware.RequireRole(string(types.RoleCoach)))
		}

		// Roster
		if cfg.ClientHandler != nil {
			coach.GET("/clients", cfg.ClientHandler.ListClients)
			coach.GET("/clients/at-risk", cfg.ClientHandler.ListAtRisk)
			coach.GET("/clients/due-checkins", cfg.ClientHandler.DueCheckins)
			coach.GET("/clients/:id", cfg.ClientHandler.GetClient)
			coach.PATCH("/clients/:id", cfg.ClientHandler.UpdateClient)
		}

		// Risk
		if cfg.RiskHandler != nil {
			coach.GET("/clients/:id/risk", cfg.RiskHandler.GetClientRisk)
			coach.POST("/clients/:id/risk/refresh", cfg.RiskHandler.RefreshClientRisk)
			coach.POST("/clients/risk/refresh-all", cfg.RiskHandler.RefreshAllClients)
		}

		// Approval queue
		if cfg.ApprovalHandler != nil {
			coach.GET("/approvals/pending", cfg.ApprovalHandler.ListPending)
			coach.GET("/approvals/pending/count", cfg.ApprovalHandler.PendingCount)
			coach.GET("/approvals/history", cfg.ApprovalHandler.ListHistory)
			coach.POST("/approvals/bulk-approve", cfg.ApprovalHandler.BulkApprove)
			coach.POST("/approvals/:id/approve", cfg.ApprovalHandler.Approve)
			coach.POST("/approvals/:id/edit", cfg.ApprovalHandler.Edit)
			coach.POST("/approvals/:id/reject", cfg.ApprovalHandler.Reject)
		}

		// Methodology corpus
		if cfg.MethodologyHandler != nil {
			coach.POST("/methodology", cfg.MethodologyHandler.AddDoc)
			coach.GET("/methodology", cfg.MethodologyHandler.ListDocs)
		}

		// Per-client views
		if cfg.MessageHandler != nil {
			coach.GET("/conversations", cfg.MessageHandler.ListConversations)
			coach.GET("/clients/:id/messages", cfg.MessageHandler.CoachHistory)
			coach.POST("/clients/:id/messages", cfg.MessageHandler.CoachSend)
		}
		if cfg.CheckinHandler != nil {
			coach.GET("/clients/:id/checkins", cfg.CheckinHandler.ListForCoach)
			coach.POST("/checkins/:id/review", cfg.CheckinHandler.Review)
		}
		if cfg.PhotoHandler != nil {
			coach.GET("/clients/:id/photos", cfg.PhotoHandler.ListForCoach)
		}
	}

	client := protected.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			client.Use(cfg.AuthMiddleware.RequireRole(string(types.RoleClient)))
		}

		if cfg.ClientHandler != nil {
			client.GET("/profile", cfg.ClientHandler.GetOwnProfile)
		}
		if cfg.MessageHandler != nil {
			client.POST("/messages", cfg.MessageHandler.Send)
			client.GET("/messages", cfg.MessageHandler.History)
		}
		if cfg.CheckinHandler != nil {
			client.POST("/checkins", cfg.CheckinHandler.Submit)
			client.GET("/checkins", cfg.CheckinHandler.List)
		}
		if cfg.PhotoHandler != nil {
			client.POST("/photos", cfg.PhotoHandler.Add)
			client.GET("/photos", cfg.PhotoHandler.List)
		}
	}

	return r
}
