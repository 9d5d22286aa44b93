package knowledge

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type ChunkRepo interface {
	Create(dbc dbctx.Context, rows []*types.MethodologyChunk) ([]*types.MethodologyChunk, error)
	// ListByCoach returns every chunk of the coach's documents. Scoring happens
	// in memory; corpora are small enough that we skip a vector index.
	ListByCoach(dbc dbctx.Context, coachID uuid.UUID) ([]*types.MethodologyChunk, error)
}

type chunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkRepo(db *gorm.DB, log *logger.Logger) ChunkRepo {
	return &chunkRepo{db: db, log: log.With("repo", "ChunkRepo")}
}

func (r *chunkRepo) Create(dbc dbctx.Context, rows []*types.MethodologyChunk) ([]*types.MethodologyChunk, error) {
	if len(rows) == 0 {
		return []*types.MethodologyChunk{}, nil
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

func (r *chunkRepo) ListByCoach(dbc dbctx.Context, coachID uuid.UUID) ([]*types.MethodologyChunk, error) {
	if coachID == uuid.Nil {
		return nil, fmt.Errorf("missing coach_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.MethodologyChunk
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.MethodologyChunk{}).
		Joins("JOIN methodology_docs ON methodology_docs.id = methodology_chunks.doc_id").
		Where("methodology_docs.coach_id = ?", coachID).
		Order("methodology_chunks.doc_id, methodology_chunks.ordinal").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
