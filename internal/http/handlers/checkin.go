package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/http/response"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/services"
)

type CheckinHandler struct {
	checkinService services.CheckinService
}

func NewCheckinHandler(checkinService services.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkinService: checkinService}
}

// POST /checkins
func (ch *CheckinHandler) Submit(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var req struct {
		ComplianceScore float64  `json:"compliance_score"`
		CurrentWeight   *float64 `json:"current_weight"`
		EnergyLevel     *int     `json:"energy_level"`
		HungerLevel     *int     `json:"hunger_level"`
		Notes           *string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	checkin, err := ch.checkinService.Submit(c.Request.Context(), rd.UserID, services.SubmitCheckinInput{
		ComplianceScore: req.ComplianceScore,
		CurrentWeight:   req.CurrentWeight,
		EnergyLevel:     req.EnergyLevel,
		HungerLevel:     req.HungerLevel,
		Notes:           req.Notes,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkin": checkin})
}

// GET /checkins?limit=
func (ch *CheckinHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	limit := queryInt(c, "limit", 12)
	checkins, err := ch.checkinService.ListForClient(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkins": checkins})
}

// GET /clients/:id/checkins?from=&to=&limit=
func (ch *CheckinHandler) ListForCoach(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_client_id", err)
		return
	}
	from, err := queryTime(c, "from")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_from", err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_to", err)
		return
	}
	limit := queryInt(c, "limit", 12)
	checkins, err := ch.checkinService.ListForCoach(c.Request.Context(), rd.UserID, clientID, from, to, limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkins": checkins})
}

// POST /checkins/:id/review
// body: { "notes": "...", "rating": 1-10 }
func (ch *CheckinHandler) Review(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	checkinID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_checkin_id", err)
		return
	}
	var req struct {
		Notes  *string `json:"notes"`
		Rating *int    `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	checkin, err := ch.checkinService.Review(c.Request.Context(), rd.UserID, checkinID, req.Notes, req.Rating)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"checkin": checkin})
}
