package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/data/repos"
	"github.com/nooch/nooch-backend/internal/data/repos/testutil"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
)

func TestRiskCachedScoreOmitsBreakdown(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)

	profiles := repos.NewClientProfileRepo(db, log)
	checkins := repos.NewCheckinRepo(db, log)
	messages := repos.NewMessageRepo(db, log)
	photos := repos.NewPhotoRepo(db, log)
	notifications := repos.NewNotificationRepo(db, log)

	notifier := NewNotifier(log, notifications, nil)
	svc := NewRiskService(db, log, profiles, checkins, messages, photos, notifier)

	ctx := context.Background()
	coachID := uuid.New()
	profile := &types.ClientProfile{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		CoachID: coachID,
	}
	if _, err := profiles.Create(dbctx.Context{Ctx: ctx}, []*types.ClientProfile{profile}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	// First read has no stored score and computes in full.
	fresh, err := svc.GetClientRisk(ctx, coachID, profile.ID)
	if err != nil {
		t.Fatalf("GetClientRisk (fresh): %v", err)
	}
	if fresh.Breakdown == nil {
		t.Fatal("fresh assessment must carry a breakdown")
	}
	if len(fresh.Factors) == 0 {
		t.Fatal("fresh assessment must carry factors")
	}

	// Second read serves the stored score without pretending to know the
	// underlying signals.
	cached, err := svc.GetClientRisk(ctx, coachID, profile.ID)
	if err != nil {
		t.Fatalf("GetClientRisk (cached): %v", err)
	}
	if cached.Score != fresh.Score || cached.Level != fresh.Level {
		t.Fatalf("cached = %d %q, want %d %q", cached.Score, cached.Level, fresh.Score, fresh.Level)
	}
	if len(cached.Factors) != len(fresh.Factors) {
		t.Fatalf("cached factors = %d, want %d", len(cached.Factors), len(fresh.Factors))
	}
	if cached.Breakdown != nil {
		t.Fatalf("cached assessment breakdown = %+v, want nil", cached.Breakdown)
	}
}
