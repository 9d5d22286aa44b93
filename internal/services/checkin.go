package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

// weekStart normalizes any moment to the Monday of its week, midnight UTC.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	daysPastMonday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -daysPastMonday)
}

// submitTrend labels a new score against the average of up to three previous
// scores. Fewer than two previous check-ins give no label.
func submitTrend(score float64, previous []float64) *types.ComplianceTrend {
	if len(previous) < 2 {
		return nil
	}
	n := len(previous)
	if n > 3 {
		n = 3
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += previous[i]
	}
	avg := sum / float64(n)

	trend := types.TrendStable
	switch {
	case score > avg+1:
		trend = types.TrendImproving
	case score < avg-1:
		trend = types.TrendDeclining
	}
	return &trend
}

type SubmitCheckinInput struct {
	ComplianceScore float64
	CurrentWeight   *float64
	EnergyLevel     *int
	HungerLevel     *int
	Notes           *string
}

type CheckinService interface {
	Submit(ctx context.Context, clientUserID uuid.UUID, in SubmitCheckinInput) (*types.WeeklyCheckin, error)
	ListForClient(ctx context.Context, clientUserID uuid.UUID, limit int) ([]*types.WeeklyCheckin, error)
	// ListForCoach filters by week start; nil bounds are open.
	ListForCoach(ctx context.Context, coachID, clientID uuid.UUID, from, to *time.Time, limit int) ([]*types.WeeklyCheckin, error)
	// Review lets the coach annotate a check-in with notes and a 1-10 rating.
	Review(ctx context.Context, coachID, checkinID uuid.UUID, notes *string, rating *int) (*types.WeeklyCheckin, error)
	// DueClients lists the coach's clients with no check-in in the last week.
	DueClients(ctx context.Context, coachID uuid.UUID) ([]*types.ClientProfile, error)
}

type checkinService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.ClientProfileRepo
	checkins repos.CheckinRepo
}

func NewCheckinService(db *gorm.DB, log *logger.Logger, profiles repos.ClientProfileRepo, checkins repos.CheckinRepo) CheckinService {
	return &checkinService{
		db:       db,
		log:      log.With("service", "CheckinService"),
		profiles: profiles,
		checkins: checkins,
	}
}

func (s *checkinService) Submit(ctx context.Context, clientUserID uuid.UUID, in SubmitCheckinInput) (*types.WeeklyCheckin, error) {
	if in.ComplianceScore < 1 || in.ComplianceScore > 10 {
		return nil, apperr.InvalidInput("compliance score must be between 1 and 10")
	}
	if in.EnergyLevel != nil && (*in.EnergyLevel < 1 || *in.EnergyLevel > 10) {
		return nil, apperr.InvalidInput("energy level must be between 1 and 10")
	}
	if in.HungerLevel != nil && (*in.HungerLevel < 1 || *in.HungerLevel > 10) {
		return nil, apperr.InvalidInput("hunger level must be between 1 and 10")
	}

	profile, err := s.profiles.GetByUserID(dbctx.Context{Ctx: ctx}, clientUserID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("client profile not found")
	}

	week := weekStart(time.Now())
	checkin := &types.WeeklyCheckin{
		ID:              uuid.New(),
		ClientID:        profile.ID,
		WeekStartDate:   week,
		ComplianceScore: in.ComplianceScore,
		CurrentWeight:   in.CurrentWeight,
		EnergyLevel:     in.EnergyLevel,
		HungerLevel:     in.HungerLevel,
		Notes:           in.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		existing, err := s.checkins.GetByClientWeek(dbc, profile.ID, week)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.AlreadyProcessed("check-in already submitted for this week")
		}

		previous, err := s.checkins.ListRecentByClient(dbc, profile.ID, 4)
		if err != nil {
			return err
		}

		var prevScores []float64
		for _, p := range previous {
			prevScores = append(prevScores, p.ComplianceScore)
		}
		checkin.ComplianceTrend = submitTrend(in.ComplianceScore, prevScores)

		if in.CurrentWeight != nil {
			for _, p := range previous {
				if p.CurrentWeight != nil {
					change := *in.CurrentWeight - *p.CurrentWeight
					checkin.WeightChange = &change
					break
				}
			}
		}

		if _, err := s.checkins.Create(dbc, []*types.WeeklyCheckin{checkin}); err != nil {
			return err
		}

		if in.CurrentWeight != nil {
			updates := map[string]interface{}{"current_weight": *in.CurrentWeight}
			if profile.StartingWeight == nil {
				updates["starting_weight"] = *in.CurrentWeight
			}
			if err := s.profiles.UpdateFields(dbc, profile.ID, updates); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return checkin, nil
}

func (s *checkinService) ListForClient(ctx context.Context, clientUserID uuid.UUID, limit int) ([]*types.WeeklyCheckin, error) {
	profile, err := s.profiles.GetByUserID(dbctx.Context{Ctx: ctx}, clientUserID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("client profile not found")
	}
	return s.checkins.ListRecentByClient(dbctx.Context{Ctx: ctx}, profile.ID, limit)
}

func (s *checkinService) ListForCoach(ctx context.Context, coachID, clientID uuid.UUID, from, to *time.Time, limit int) ([]*types.WeeklyCheckin, error) {
	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.GetByID(dbc, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil || profile.CoachID != coachID {
		return nil, apperr.NotFound("client not found")
	}
	return s.checkins.ListByClientRange(dbc, clientID, from, to, limit)
}

func (s *checkinService) Review(ctx context.Context, coachID, checkinID uuid.UUID, notes *string, rating *int) (*types.WeeklyCheckin, error) {
	if notes == nil && rating == nil {
		return nil, apperr.InvalidInput("nothing to update")
	}
	if rating != nil && (*rating < 1 || *rating > 10) {
		return nil, apperr.InvalidInput("rating must be between 1 and 10")
	}

	dbc := dbctx.Context{Ctx: ctx}
	checkin, err := s.checkins.GetByID(dbc, checkinID)
	if err != nil {
		return nil, fmt.Errorf("load checkin: %w", err)
	}
	if checkin == nil {
		return nil, apperr.NotFound("check-in not found")
	}
	profile, err := s.profiles.GetByID(dbc, checkin.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil || profile.CoachID != coachID {
		return nil, apperr.NotFound("check-in not found")
	}

	updates := map[string]interface{}{}
	if notes != nil {
		updates["coach_notes"] = *notes
	}
	if rating != nil {
		updates["coach_rating"] = *rating
	}
	if err := s.checkins.UpdateFields(dbc, checkinID, updates); err != nil {
		return nil, fmt.Errorf("update checkin: %w", err)
	}
	return s.checkins.GetByID(dbc, checkinID)
}

func (s *checkinService) DueClients(ctx context.Context, coachID uuid.UUID) ([]*types.ClientProfile, error) {
	dbc := dbctx.Context{Ctx: ctx}
	clients, err := s.profiles.ListByCoach(dbc, coachID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	if len(clients) == 0 {
		return []*types.ClientProfile{}, nil
	}

	ids := make([]uuid.UUID, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.ID)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -7)
	have, err := s.checkins.ClientIDsWithCheckinSince(dbc, ids, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find recent checkins: %w", err)
	}

	due := make([]*types.ClientProfile, 0, len(clients))
	for _, c := range clients {
		if !have[c.ID] {
			due = append(due, c)
		}
	}
	return due, nil
}
