package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type UpdateClientInput struct {
	Goals               map[string]any
	DietaryRestrictions []string
	Preferences         map[string]any
	ActivityLevel       *string
	StartingWeight      *float64
	CurrentWeight       *float64
	TargetWeight        *float64
}

var activityLevels = map[string]bool{
	"sedentary":   true,
	"light":       true,
	"moderate":    true,
	"active":      true,
	"very_active": true,
}

type ClientService interface {
	ListClients(ctx context.Context, coachID uuid.UUID) ([]*types.ClientProfile, error)
	// ListAtRisk orders the roster by risk score, highest first; clients
	// never scored sort last.
	ListAtRisk(ctx context.Context, coachID uuid.UUID) ([]*types.ClientProfile, error)
	GetClient(ctx context.Context, coachID, clientID uuid.UUID) (*types.ClientProfile, error)
	GetOwnProfile(ctx context.Context, clientUserID uuid.UUID) (*types.ClientProfile, error)
	UpdateClient(ctx context.Context, coachID, clientID uuid.UUID, in UpdateClientInput) (*types.ClientProfile, error)
}

type clientService struct {
	db       *gorm.DB
	log      *logger.Logger
	profiles repos.ClientProfileRepo
}

func NewClientService(db *gorm.DB, log *logger.Logger, profiles repos.ClientProfileRepo) ClientService {
	return &clientService{
		db:       db,
		log:      log.With("service", "ClientService"),
		profiles: profiles,
	}
}

func (s *clientService) ListClients(ctx context.Context, coachID uuid.UUID) ([]*types.ClientProfile, error) {
	return s.profiles.ListByCoach(dbctx.Context{Ctx: ctx}, coachID)
}

func (s *clientService) ListAtRisk(ctx context.Context, coachID uuid.UUID) ([]*types.ClientProfile, error) {
	clients, err := s.profiles.ListByCoach(dbctx.Context{Ctx: ctx}, coachID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(clients, func(i, j int) bool {
		a, b := clients[i].RiskScore, clients[j].RiskScore
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return clients, nil
}

func (s *clientService) GetClient(ctx context.Context, coachID, clientID uuid.UUID) (*types.ClientProfile, error) {
	profile, err := s.profiles.GetByID(dbctx.Context{Ctx: ctx}, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil || profile.CoachID != coachID {
		return nil, apperr.NotFound("client not found")
	}
	return profile, nil
}

func (s *clientService) GetOwnProfile(ctx context.Context, clientUserID uuid.UUID) (*types.ClientProfile, error) {
	profile, err := s.profiles.GetByUserID(dbctx.Context{Ctx: ctx}, clientUserID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("client profile not found")
	}
	return profile, nil
}

func (s *clientService) UpdateClient(ctx context.Context, coachID, clientID uuid.UUID, in UpdateClientInput) (*types.ClientProfile, error) {
	if _, err := s.GetClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Goals != nil {
		raw, err := json.Marshal(in.Goals)
		if err != nil {
			return nil, apperr.InvalidInput("bad goals payload")
		}
		updates["goals"] = raw
	}
	if in.DietaryRestrictions != nil {
		raw, err := json.Marshal(in.DietaryRestrictions)
		if err != nil {
			return nil, apperr.InvalidInput("bad dietary restrictions payload")
		}
		updates["dietary_restrictions"] = raw
	}
	if in.Preferences != nil {
		raw, err := json.Marshal(in.Preferences)
		if err != nil {
			return nil, apperr.InvalidInput("bad preferences payload")
		}
		updates["preferences"] = raw
	}
	if in.ActivityLevel != nil {
		if !activityLevels[*in.ActivityLevel] {
			return nil, apperr.InvalidInput("unknown activity level")
		}
		updates["activity_level"] = *in.ActivityLevel
	}
	if in.StartingWeight != nil {
		updates["starting_weight"] = *in.StartingWeight
	}
	if in.CurrentWeight != nil {
		updates["current_weight"] = *in.CurrentWeight
	}
	if in.TargetWeight != nil {
		updates["target_weight"] = *in.TargetWeight
	}
	if len(updates) == 0 {
		return nil, apperr.InvalidInput("nothing to update")
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := s.profiles.UpdateFields(dbc, clientID, updates); err != nil {
		return nil, fmt.Errorf("update client profile: %w", err)
	}
	return s.profiles.GetByID(dbc, clientID)
}
