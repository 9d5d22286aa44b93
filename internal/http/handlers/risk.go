package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/http/response"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/services"
)

type RiskHandler struct {
	riskService services.RiskService
}

func NewRiskHandler(riskService services.RiskService) *RiskHandler {
	return &RiskHandler{riskService: riskService}
}

// GET /clients/:id/risk
func (rh *RiskHandler) GetClientRisk(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_client_id", err)
		return
	}
	assessment, err := rh.riskService.GetClientRisk(c.Request.Context(), rd.UserID, clientID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"risk": assessment})
}

// POST /clients/:id/risk/refresh
func (rh *RiskHandler) RefreshClientRisk(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_client_id", err)
		return
	}
	assessment, err := rh.riskService.AssessClient(c.Request.Context(), rd.UserID, clientID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"risk": assessment})
}

// POST /clients/risk/refresh-all
func (rh *RiskHandler) RefreshAllClients(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	summary, err := rh.riskService.RefreshAllClients(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}
