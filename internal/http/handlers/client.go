package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/http/response"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/services"
)

type ClientHandler struct {
	clientService  services.ClientService
	checkinService services.CheckinService
}

func NewClientHandler(clientService services.ClientService, checkinService services.CheckinService) *ClientHandler {
	return &ClientHandler{clientService: clientService, checkinService: checkinService}
}

// GET /clients
func (ch *ClientHandler) ListClients(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clients, err := ch.clientService.ListClients(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"clients": clients})
}

// GET /clients/:id
func (ch *ClientHandler) GetClient(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_client_id", err)
		return
	}
	client, err := ch.clientService.GetClient(c.Request.Context(), rd.UserID, clientID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"client": client})
}

// PATCH /clients/:id
// body: any subset of goals, dietary_restrictions, preferences, weights
func (ch *ClientHandler) UpdateClient(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_client_id", err)
		return
	}
	var req struct {
		Goals               map[string]any `json:"goals"`
		DietaryRestrictions []string       `json:"dietary_restrictions"`
		Preferences         map[string]any `json:"preferences"`
		ActivityLevel       *string        `json:"activity_level"`
		StartingWeight      *float64       `json:"starting_weight"`
		CurrentWeight       *float64       `json:"current_weight"`
		TargetWeight        *float64       `json:"target_weight"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	client, err := ch.clientService.UpdateClient(c.Request.Context(), rd.UserID, clientID, services.UpdateClientInput{
		Goals:               req.Goals,
		DietaryRestrictions: req.DietaryRestrictions,
		Preferences:         req.Preferences,
		ActivityLevel:       req.ActivityLevel,
		StartingWeight:      req.StartingWeight,
		CurrentWeight:       req.CurrentWeight,
		TargetWeight:        req.TargetWeight,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"client": client})
}

// GET /profile (client)
func (ch *ClientHandler) GetOwnProfile(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	profile, err := ch.clientService.GetOwnProfile(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": profile})
}

// GET /clients/at-risk
func (ch *ClientHandler) ListAtRisk(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clients, err := ch.clientService.ListAtRisk(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"clients": clients})
}

// GET /clients/due-checkins
func (ch *ClientHandler) DueCheckins(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clients, err := ch.checkinService.DueClients(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"clients": clients})
}
