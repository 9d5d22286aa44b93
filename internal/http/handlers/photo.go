package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/http/response"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/services"
)

type PhotoHandler struct {
	photoService services.PhotoService
}

func NewPhotoHandler(photoService services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

// POST /photos
func (ph *PhotoHandler) Add(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var req struct {
		URL          string     `json:"url"`
		ThumbnailURL *string    `json:"thumbnail_url"`
		Angle        string     `json:"angle"`
		TakenAt      *time.Time `json:"taken_at"`
		Notes        *string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	photo, err := ph.photoService.Add(c.Request.Context(), rd.UserID, services.AddPhotoInput{
		URL:          req.URL,
		ThumbnailURL: req.ThumbnailURL,
		Angle:        types.PhotoAngle(req.Angle),
		TakenAt:      req.TakenAt,
		Notes:        req.Notes,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"photo": photo})
}

// GET /photos?limit=
func (ph *PhotoHandler) List(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	limit := queryInt(c, "limit", 30)
	photos, err := ph.photoService.ListForClient(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"photos": photos})
}

// GET /clients/:id/photos?limit=
func (ph *PhotoHandler) ListForCoach(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_client_id", err)
		return
	}
	limit := queryInt(c, "limit", 30)
	photos, err := ph.photoService.ListForCoach(c.Request.Context(), rd.UserID, clientID, limit)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"photos": photos})
}
