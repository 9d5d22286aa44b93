package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type ClientProfileRepo interface {
	Create(dbc dbctx.Context, rows []*types.ClientProfile) ([]*types.ClientProfile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ClientProfile, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.ClientProfile, error)
	ListByCoach(dbc dbctx.Context, coachID uuid.UUID) ([]*types.ClientProfile, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateRisk(dbc dbctx.Context, id uuid.UUID, score int, factors []byte, at time.Time) error
}

type clientProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClientProfileRepo(db *gorm.DB, log *logger.Logger) ClientProfileRepo {
	return &clientProfileRepo{db: db, log: log.With("repo", "ClientProfileRepo")}
}

func (r *clientProfileRepo) Create(dbc dbctx.Context, rows []*types.ClientProfile) ([]*types.ClientProfile, error) {
	if len(rows) == 0 {
		return []*types.ClientProfile{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *clientProfileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ClientProfile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing client_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.ClientProfile
	if err := txx.WithContext(dbc.Ctx).
		Preload("User").
		Where("id = ?", id).
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *clientProfileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.ClientProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.ClientProfile
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *clientProfileRepo) ListByCoach(dbc dbctx.Context, coachID uuid.UUID) ([]*types.ClientProfile, error) {
	if coachID == uuid.Nil {
		return nil, fmt.Errorf("missing coach_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ClientProfile
	if err := txx.WithContext(dbc.Ctx).
		Preload("User").
		Where("coach_id = ?", coachID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *clientProfileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing client_id")
	}
	if len(updates) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	updates["updated_at"] = time.Now().UTC()
	return txx.WithContext(dbc.Ctx).
		Model(&types.ClientProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *clientProfileRepo) UpdateRisk(dbc dbctx.Context, id uuid.UUID, score int, factors []byte, at time.Time) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing client_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.ClientProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"risk_score":       score,
			"risk_factors":     factors,
			"last_risk_update": at,
			"updated_at":       time.Now().UTC(),
		}).Error
}
