package chat

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

type DraftRepo interface {
	Create(dbc dbctx.Context, rows []*types.DraftResponse) ([]*types.DraftResponse, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DraftResponse, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.DraftResponse, error)
	ListPendingByCoach(dbc dbctx.Context, coachID uuid.UUID) ([]*types.DraftResponse, error)
	ListDecidedByCoach(dbc dbctx.Context, coachID uuid.UUID, limit, offset int) ([]*types.DraftResponse, error)
	CountPendingByCoach(dbc dbctx.Context, coachID uuid.UUID) (int64, error)
	// UpdateIfPending applies updates only while the row is still PENDING and
	// reports whether it won the race. A false return means another decision
	// already landed.
	UpdateIfPending(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	// ApproveAllPending approves every listed draft in a single conditional
	// update and returns the number of rows that were still PENDING.
	ApproveAllPending(dbc dbctx.Context, ids []uuid.UUID, reviewerID uuid.UUID, at time.Time) (int64, error)
}

type draftRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDraftRepo(db *gorm.DB, log *logger.Logger) DraftRepo {
	return &draftRepo{db: db, log: log.With("repo", "DraftRepo")}
}

func (r *draftRepo) Create(dbc dbctx.Context, rows []*types.DraftResponse) ([]*types.DraftResponse, error) {
	if len(rows) == 0 {
		return []*types.DraftResponse{}, nil
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

func (r *draftRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DraftResponse, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing draft_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.DraftResponse
	if err := txx.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *draftRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.DraftResponse, error) {
	if len(ids) == 0 {
		return []*types.DraftResponse{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.DraftResponse
	if err := txx.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *draftRepo) ListPendingByCoach(dbc dbctx.Context, coachID uuid.UUID) ([]*types.DraftResponse, error) {
	if coachID == uuid.Nil {
		return nil, fmt.Errorf("missing coach_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.DraftResponse
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.DraftResponse{}).
		Joins("JOIN conversations ON conversations.id = draft_responses.conversation_id").
		Where("conversations.coach_id = ? AND draft_responses.status = ?", coachID, types.DraftPending).
		Order("draft_responses.created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *draftRepo) ListDecidedByCoach(dbc dbctx.Context, coachID uuid.UUID, limit, offset int) ([]*types.DraftResponse, error) {
	if coachID == uuid.Nil {
		return nil, fmt.Errorf("missing coach_id")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.DraftResponse
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.DraftResponse{}).
		Joins("JOIN conversations ON conversations.id = draft_responses.conversation_id").
		Where("conversations.coach_id = ? AND draft_responses.status <> ?", coachID, types.DraftPending).
		Order("draft_responses.reviewed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *draftRepo) CountPendingByCoach(dbc dbctx.Context, coachID uuid.UUID) (int64, error) {
	if coachID == uuid.Nil {
		return 0, fmt.Errorf("missing coach_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.DraftResponse{}).
		Joins("JOIN conversations ON conversations.id = draft_responses.conversation_id").
		Where("conversations.coach_id = ? AND draft_responses.status = ?", coachID, types.DraftPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *draftRepo) UpdateIfPending(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("missing draft_id")
	}
	if len(updates) == 0 {
		return false, fmt.Errorf("missing updates")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	updates["updated_at"] = time.Now().UTC()
	res := txx.WithContext(dbc.Ctx).
		Model(&types.DraftResponse{}).
		Where("id = ? AND status = ?", id, types.DraftPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *draftRepo) ApproveAllPending(dbc dbctx.Context, ids []uuid.UUID, reviewerID uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Model(&types.DraftResponse{}).
		Where("id IN ? AND status = ?", ids, types.DraftPending).
		Updates(map[string]interface{}{
			"status":        types.DraftApproved,
			"final_content": gorm.Expr("original_content"),
			"reviewed_by":   reviewerID,
			"reviewed_at":   at,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
