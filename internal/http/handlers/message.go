package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/http/response"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/services"
)

type MessageHandler struct {
	messageService services.MessageService
	escrowService  services.EscrowService
}

func NewMessageHandler(messageService services.MessageService, escrowService services.EscrowService) *MessageHandler {
	return &MessageHandler{messageService: messageService, escrowService: escrowService}
}

// POST /messages
// body: { "content": "..." }
//
// The reply drafted for the client is held for coach review; the client only
// sees their own message until a decision lands.
func (mh *MessageHandler) Send(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	draft, err := mh.escrowService.CreateDraft(c.Request.Context(), rd.UserID, req.Content)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": string(draft.Status)})
}

// GET /messages?limit=&offset=
func (mh *MessageHandler) History(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	messages, err := mh.messageService.ClientHistory(c.Request.Context(), rd.UserID, limit, offset)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": messages})
}

// GET /conversations
func (mh *MessageHandler) ListConversations(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	conversations, err := mh.messageService.ListConversations(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": conversations})
}

// GET /clients/:id/messages?limit=&offset=
func (mh *MessageHandler) CoachHistory(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_client_id", err)
		return
	}
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	messages, err := mh.messageService.CoachHistory(c.Request.Context(), rd.UserID, clientID, limit, offset)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": messages})
}

// POST /clients/:id/messages
// body: { "content": "..." }
func (mh *MessageHandler) CoachSend(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_client_id", err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, err := mh.messageService.CoachSend(c.Request.Context(), rd.UserID, clientID, req.Content)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}
