package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/data/repos/testutil"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
)

func TestCheckinRepoWeekUniqueness(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewCheckinRepo(db, testutil.Logger(t))

	clientID := uuid.New()
	week := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	c1 := &types.WeeklyCheckin{ID: uuid.New(), ClientID: clientID, WeekStartDate: week, ComplianceScore: 8}
	if _, err := repo.Create(dbc, []*types.WeeklyCheckin{c1}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := &types.WeeklyCheckin{ID: uuid.New(), ClientID: clientID, WeekStartDate: week, ComplianceScore: 5}
	if _, err := repo.Create(dbc, []*types.WeeklyCheckin{dup}); err == nil {
		t.Fatal("duplicate week should violate unique index")
	}
}

func TestCheckinRepoQueries(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewCheckinRepo(db, testutil.Logger(t))

	clientID := uuid.New()
	otherID := uuid.New()
	base := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	var rows []*types.WeeklyCheckin
	for i := 0; i < 4; i++ {
		rows = append(rows, &types.WeeklyCheckin{
			ID:              uuid.New(),
			ClientID:        clientID,
			WeekStartDate:   base.AddDate(0, 0, 7*i),
			ComplianceScore: float64(5 + i),
		})
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	recent, err := repo.ListRecentByClient(dbc, clientID, 3)
	if err != nil {
		t.Fatalf("ListRecentByClient: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}
	if !recent[0].WeekStartDate.After(recent[1].WeekStartDate) {
		t.Fatal("want newest week first")
	}

	count, err := repo.CountSince(dbc, clientID, base.AddDate(0, 0, 10))
	if err != nil || count != 2 {
		t.Fatalf("CountSince: count=%d err=%v", count, err)
	}

	have, err := repo.ClientIDsWithCheckinSince(dbc, []uuid.UUID{clientID, otherID}, base)
	if err != nil {
		t.Fatalf("ClientIDsWithCheckinSince: %v", err)
	}
	if !have[clientID] || have[otherID] {
		t.Fatalf("have = %v", have)
	}

	if err := repo.UpdateFields(dbc, rows[0].ID, map[string]interface{}{
		"coach_notes":  "good week",
		"coach_rating": 9,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByID(dbc, rows[0].ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got.CoachRating == nil || *got.CoachRating != 9 {
		t.Fatalf("coach_rating = %v, want 9", got.CoachRating)
	}
}
