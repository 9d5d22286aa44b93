package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nooch/nooch-backend/internal/http/response"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/services"
)

type MethodologyHandler struct {
	methodologyService services.MethodologyService
}

func NewMethodologyHandler(methodologyService services.MethodologyService) *MethodologyHandler {
	return &MethodologyHandler{methodologyService: methodologyService}
}

// POST /methodology
// body: { "title": "...", "category": "...", "chunks": ["...", ...] }
func (mh *MethodologyHandler) AddDoc(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var req struct {
		Title    string   `json:"title"`
		Category *string  `json:"category"`
		Chunks   []string `json:"chunks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	doc, err := mh.methodologyService.AddDoc(c.Request.Context(), rd.UserID, services.AddDocInput{
		Title:    req.Title,
		Category: req.Category,
		Chunks:   req.Chunks,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"doc": doc})
}

// GET /methodology
func (mh *MethodologyHandler) ListDocs(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	docs, err := mh.methodologyService.ListDocs(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"docs": docs})
}
