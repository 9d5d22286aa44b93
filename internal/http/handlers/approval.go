package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/http/response"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/services"
)

type ApprovalHandler struct {
	escrowService services.EscrowService
}

func NewApprovalHandler(escrowService services.EscrowService) *ApprovalHandler {
	return &ApprovalHandler{escrowService: escrowService}
}

// GET /approvals/pending
func (ah *ApprovalHandler) ListPending(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	approvals, err := ah.escrowService.ListPending(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"approvals": approvals})
}

// GET /approvals/pending/count
func (ah *ApprovalHandler) PendingCount(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	count, err := ah.escrowService.PendingCount(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": count})
}

// GET /approvals/history?limit=&offset=
func (ah *ApprovalHandler) ListHistory(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	drafts, err := ah.escrowService.ListHistory(c.Request.Context(), rd.UserID, limit, offset)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"drafts": drafts})
}

// POST /approvals/:id/approve
func (ah *ApprovalHandler) Approve(c *gin.Context) {
	ah.decide(c, services.DecisionInput{Kind: services.DecisionApprove})
}

// POST /approvals/:id/edit
// body: { "content": "..." }
func (ah *ApprovalHandler) Edit(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ah.decide(c, services.DecisionInput{Kind: services.DecisionEdit, EditedContent: req.Content})
}

// POST /approvals/:id/reject
// body: { "reason": "..." } (optional)
func (ah *ApprovalHandler) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	ah.decide(c, services.DecisionInput{Kind: services.DecisionReject, Reason: req.Reason})
}

func (ah *ApprovalHandler) decide(c *gin.Context, in services.DecisionInput) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_draft_id", err)
		return
	}
	draft, err := ah.escrowService.Decide(c.Request.Context(), rd.UserID, draftID, in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"draft": draft})
}

// POST /approvals/bulk-approve
// body: { "draft_ids": ["...", ...] }
func (ah *ApprovalHandler) BulkApprove(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var req struct {
		DraftIDs []uuid.UUID `json:"draft_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	approved, err := ah.escrowService.BulkApprove(c.Request.Context(), rd.UserID, req.DraftIDs)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"approved": approved})
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// queryTime accepts RFC 3339 timestamps or bare dates.
func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
