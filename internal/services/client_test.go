package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

// recordingProfileRepo serves a fixed profile and captures the column updates
// it receives.
type recordingProfileRepo struct {
	repos.ClientProfileRepo
	profile *types.ClientProfile
	updates map[string]interface{}
}

func (r *recordingProfileRepo) GetByID(dbctx.Context, uuid.UUID) (*types.ClientProfile, error) {
	return r.profile, nil
}

func (r *recordingProfileRepo) UpdateFields(_ dbctx.Context, _ uuid.UUID, updates map[string]interface{}) error {
	r.updates = updates
	return nil
}

func TestUpdateClientActivityLevel(t *testing.T) {
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	coachID := uuid.New()
	profile := &types.ClientProfile{ID: uuid.New(), CoachID: coachID}

	t.Run("valid level persists", func(t *testing.T) {
		repo := &recordingProfileRepo{profile: profile}
		svc := &clientService{log: log.With("service", "ClientService"), profiles: repo}
		level := "moderate"
		if _, err := svc.UpdateClient(context.Background(), coachID, profile.ID, UpdateClientInput{ActivityLevel: &level}); err != nil {
			t.Fatalf("UpdateClient: %v", err)
		}
		if got := repo.updates["activity_level"]; got != "moderate" {
			t.Fatalf("activity_level update = %v, want moderate", got)
		}
	})

	t.Run("unknown level rejected", func(t *testing.T) {
		repo := &recordingProfileRepo{profile: profile}
		svc := &clientService{log: log.With("service", "ClientService"), profiles: repo}
		level := "extreme"
		_, err := svc.UpdateClient(context.Background(), coachID, profile.ID, UpdateClientInput{ActivityLevel: &level})
		if err == nil || apperr.KindOf(err) != apperr.KindInvalidInput {
			t.Fatalf("err = %v, want INVALID_INPUT", err)
		}
		if repo.updates != nil {
			t.Fatalf("updates written on invalid input: %v", repo.updates)
		}
	})
}
