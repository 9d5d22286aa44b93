package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
	"github.com/nooch/nooch-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /sse/stream
func (rh *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	client := rh.hub.NewClient(rd.UserID)
	rh.log.Info("SSE stream open", "user_id", rd.UserID.String(), "client_id", client.ID.String())

	rh.hub.ServeHTTP(c.Writer, c.Request, client)

	rh.hub.CloseClient(client)
	rh.log.Info("SSE stream closed", "user_id", rd.UserID.String(), "client_id", client.ID.String())
}
