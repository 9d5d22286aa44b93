package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

func TestWeekStart(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday stays", time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		{"wednesday rolls back", time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		{"sunday rolls back six days", time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC), time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)},
		{"month boundary", time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := weekStart(tc.in); !got.Equal(tc.want) {
				t.Fatalf("weekStart(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

// emptyProfileRepo reports no profile for any user, so a submission that
// clears validation surfaces as NOT_FOUND.
type emptyProfileRepo struct{ repos.ClientProfileRepo }

func (emptyProfileRepo) GetByUserID(dbctx.Context, uuid.UUID) (*types.ClientProfile, error) {
	return nil, nil
}

func TestSubmitComplianceScoreBounds(t *testing.T) {
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	svc := &checkinService{log: log.With("service", "CheckinService"), profiles: emptyProfileRepo{}}

	cases := []struct {
		name  string
		score float64
		want  apperr.Kind
	}{
		{"zero rejected", 0, apperr.KindInvalidInput},
		{"below one rejected", 0.5, apperr.KindInvalidInput},
		{"negative rejected", -2, apperr.KindInvalidInput},
		{"above ten rejected", 10.5, apperr.KindInvalidInput},
		{"one clears validation", 1, apperr.KindNotFound},
		{"ten clears validation", 10, apperr.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), uuid.New(), SubmitCheckinInput{ComplianceScore: tc.score})
			if err == nil || apperr.KindOf(err) != tc.want {
				t.Fatalf("Submit(score=%v): err = %v, want kind %s", tc.score, err, tc.want)
			}
		})
	}
}

func TestSubmitTrend(t *testing.T) {
	improving := types.TrendImproving
	declining := types.TrendDeclining
	stable := types.TrendStable

	cases := []struct {
		name     string
		score    float64
		previous []float64
		want     *types.ComplianceTrend
	}{
		{"no previous", 8, nil, nil},
		{"one previous", 8, []float64{5}, nil},
		{"improving", 8, []float64{6, 6}, &improving},
		{"declining", 4, []float64{6, 6}, &declining},
		{"stable within band", 6.5, []float64{6, 6}, &stable},
		{"uses at most three previous", 8, []float64{7, 7, 7, 1}, &stable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := submitTrend(tc.score, tc.previous)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("submitTrend = %v, want %v", got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Fatalf("submitTrend = %s, want %s", *got, *tc.want)
			}
		})
	}
}
