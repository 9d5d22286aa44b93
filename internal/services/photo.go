package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type AddPhotoInput struct {
	URL          string
	ThumbnailURL *string
	Angle        types.PhotoAngle
	TakenAt      *time.Time
	Notes        *string
}

type PhotoService interface {
	Add(ctx context.Context, clientUserID uuid.UUID, in AddPhotoInput) (*types.ProgressPhoto, error)
	ListForClient(ctx context.Context, clientUserID uuid.UUID, limit int) ([]*types.ProgressPhoto, error)
	ListForCoach(ctx context.Context, coachID, clientID uuid.UUID, limit int) ([]*types.ProgressPhoto, error)
}

type photoService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.ClientProfileRepo
	photos   repos.PhotoRepo
}

func NewPhotoService(db *gorm.DB, log *logger.Logger, profiles repos.ClientProfileRepo, photos repos.PhotoRepo) PhotoService {
	return &photoService{
		db:       db,
		log:      log.With("service", "PhotoService"),
		profiles: profiles,
		photos:   photos,
	}
}

func (s *photoService) Add(ctx context.Context, clientUserID uuid.UUID, in AddPhotoInput) (*types.ProgressPhoto, error) {
	if strings.TrimSpace(in.URL) == "" {
		return nil, apperr.InvalidInput("photo url required")
	}
	switch in.Angle {
	case types.AngleFront, types.AngleSide, types.AngleBack:
	default:
		return nil, apperr.InvalidInput("angle must be front, side, or back")
	}

	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.GetByUserID(dbc, clientUserID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("client profile not found")
	}

	takenAt := time.Now().UTC()
	if in.TakenAt != nil {
		takenAt = in.TakenAt.UTC()
	}

	photo := &types.ProgressPhoto{
		ID:           uuid.New(),
		ClientID:     profile.ID,
		URL:          strings.TrimSpace(in.URL),
		ThumbnailURL: in.ThumbnailURL,
		Angle:        in.Angle,
		TakenAt:      takenAt,
		Notes:        in.Notes,
	}
	if _, err := s.photos.Create(dbc, []*types.ProgressPhoto{photo}); err != nil {
		return nil, fmt.Errorf("persist photo: %w", err)
	}
	return photo, nil
}

func (s *photoService) ListForClient(ctx context.Context, clientUserID uuid.UUID, limit int) ([]*types.ProgressPhoto, error) {
	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.GetByUserID(dbc, clientUserID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("client profile not found")
	}
	return s.photos.ListByClient(dbc, profile.ID, limit)
}

func (s *photoService) ListForCoach(ctx context.Context, coachID, clientID uuid.UUID, limit int) ([]*types.ProgressPhoto, error) {
	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.GetByID(dbc, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil || profile.CoachID != coachID {
		return nil, apperr.NotFound("client not found")
	}
	return s.photos.ListByClient(dbc, clientID, limit)
}
