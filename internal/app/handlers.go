package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/nooch/nooch-backend/internal/http"
	httpH "github.com/nooch/nooch-backend/internal/http/handlers"
	httpMW "github.com/nooch/nooch-backend/internal/http/middleware"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
	"github.com/nooch/nooch-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	Client       *httpH.ClientHandler
	Risk         *httpH.RiskHandler
	Approval     *httpH.ApprovalHandler
	Message      *httpH.MessageHandler
	Methodology  *httpH.MethodologyHandler
	Checkin      *httpH.CheckinHandler
	Photo        *httpH.PhotoHandler
	Notification *httpH.NotificationHandler
	Realtime     *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, services Services, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(),
		Auth:         httpH.NewAuthHandler(services.Auth),
		Client:       httpH.NewClientHandler(services.Client, services.Checkin),
		Risk:         httpH.NewRiskHandler(services.Risk),
		Approval:     httpH.NewApprovalHandler(services.Escrow),
		Message:      httpH.NewMessageHandler(services.Message, services.Escrow),
		Methodology:  httpH.NewMethodologyHandler(services.Methodology),
		Checkin:      httpH.NewCheckinHandler(services.Checkin),
		Photo:        httpH.NewPhotoHandler(services.Photo),
		Notification: httpH.NewNotificationHandler(services.Notification),
		Realtime:     httpH.NewRealtimeHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:            log,
		AuthMiddleware: middleware.Auth,

		HealthHandler:       handlers.Health,
		AuthHandler:         handlers.Auth,
		ClientHandler:       handlers.Client,
		RiskHandler:         handlers.Risk,
		ApprovalHandler:     handlers.Approval,
		MessageHandler:      handlers.Message,
		MethodologyHandler:  handlers.Methodology,
		CheckinHandler:      handlers.Checkin,
		PhotoHandler:        handlers.Photo,
		NotificationHandler: handlers.Notification,
		RealtimeHandler:     handlers.Realtime,
	})
}
