package knowledge

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type DocRepo interface {
	Create(dbc dbctx.Context, rows []*types.MethodologyDoc) ([]*types.MethodologyDoc, error)
	ListByCoach(dbc dbctx.Context, coachID uuid.UUID) ([]*types.MethodologyDoc, error)
}

type docRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocRepo(db *gorm.DB, log *logger.Logger) DocRepo {
	return &docRepo{db: db, log: log.With("repo", "DocRepo")}
}

func (r *docRepo) Create(dbc dbctx.Context, rows []*types.MethodologyDoc) ([]*types.MethodologyDoc, error) {
	if len(rows) == 0 {
		return []*types.MethodologyDoc{}, nil
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

func (r *docRepo) ListByCoach(dbc dbctx.Context, coachID uuid.UUID) ([]*types.MethodologyDoc, error) {
	if coachID == uuid.Nil {
		return nil, fmt.Errorf("missing coach_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.MethodologyDoc
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.MethodologyDoc{}).
		Where("coach_id = ?", coachID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
