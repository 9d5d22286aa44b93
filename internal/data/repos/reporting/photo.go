package reporting

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type PhotoRepo interface {
	Create(dbc dbctx.Context, rows []*types.ProgressPhoto) ([]*types.ProgressPhoto, error)
	ListByClient(dbc dbctx.Context, clientID uuid.UUID, limit int) ([]*types.ProgressPhoto, error)
	LatestByClient(dbc dbctx.Context, clientID uuid.UUID) (*types.ProgressPhoto, error)
}

type photoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPhotoRepo(db *gorm.DB, log *logger.Logger) PhotoRepo {
	return &photoRepo{db: db, log: log.With("repo", "PhotoRepo")}
}

func (r *photoRepo) Create(dbc dbctx.Context, rows []*types.ProgressPhoto) ([]*types.ProgressPhoto, error) {
	if len(rows) == 0 {
		return []*types.ProgressPhoto{}, nil
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

func (r *photoRepo) ListByClient(dbc dbctx.Context, clientID uuid.UUID, limit int) ([]*types.ProgressPhoto, error) {
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("missing client_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.ProgressPhoto
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.ProgressPhoto{}).
		Where("client_id = ?", clientID).
		Order("taken_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *photoRepo) LatestByClient(dbc dbctx.Context, clientID uuid.UUID) (*types.ProgressPhoto, error) {
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("missing client_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.ProgressPhoto
	if err := txx.WithContext(dbc.Ctx).
		Where("client_id = ?", clientID).
		Order("taken_at DESC").
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
