package reporting

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

type CheckinRepo interface {
	Create(dbc dbctx.Context, rows []*types.WeeklyCheckin) ([]*types.WeeklyCheckin, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.WeeklyCheckin, error)
	GetByClientWeek(dbc dbctx.Context, clientID uuid.UUID, weekStart time.Time) (*types.WeeklyCheckin, error)
	// ListRecentByClient returns up to limit check-ins, newest week first.
	ListRecentByClient(dbc dbctx.Context, clientID uuid.UUID, limit int) ([]*types.WeeklyCheckin, error)
	// ListByClientRange filters by week_start_date; nil bounds are open.
	ListByClientRange(dbc dbctx.Context, clientID uuid.UUID, from, to *time.Time, limit int) ([]*types.WeeklyCheckin, error)
	CountSince(dbc dbctx.Context, clientID uuid.UUID, since time.Time) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// ClientIDsWithCheckinSince returns the set of clients that have a check-in
	// with week_start_date at or after the cutoff.
	ClientIDsWithCheckinSince(dbc dbctx.Context, clientIDs []uuid.UUID, since time.Time) (map[uuid.UUID]bool, error)
}

type checkinRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCheckinRepo(db *gorm.DB, log *logger.Logger) CheckinRepo {
	return &checkinRepo{db: db, log: log.With("repo", "CheckinRepo")}
}

func (r *checkinRepo) Create(dbc dbctx.Context, rows []*types.WeeklyCheckin) ([]*types.WeeklyCheckin, error) {
	if len(rows) == 0 {
		return []*types.WeeklyCheckin{}, nil
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

func (r *checkinRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.WeeklyCheckin, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing checkin_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.WeeklyCheckin
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

func (r *checkinRepo) GetByClientWeek(dbc dbctx.Context, clientID uuid.UUID, weekStart time.Time) (*types.WeeklyCheckin, error) {
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("missing client_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out types.WeeklyCheckin
	if err := txx.WithContext(dbc.Ctx).
		Where("client_id = ? AND week_start_date = ?", clientID, weekStart).
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *checkinRepo) ListRecentByClient(dbc dbctx.Context, clientID uuid.UUID, limit int) ([]*types.WeeklyCheckin, error) {
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("missing client_id")
	}
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.WeeklyCheckin
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.WeeklyCheckin{}).
		Where("client_id = ?", clientID).
		Order("week_start_date DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *checkinRepo) ListByClientRange(dbc dbctx.Context, clientID uuid.UUID, from, to *time.Time, limit int) ([]*types.WeeklyCheckin, error) {
	if clientID == uuid.Nil {
		return nil, fmt.Errorf("missing client_id")
	}
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	q := txx.WithContext(dbc.Ctx).
		Model(&types.WeeklyCheckin{}).
		Where("client_id = ?", clientID)
	if from != nil {
		q = q.Where("week_start_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("week_start_date <= ?", *to)
	}
	var out []*types.WeeklyCheckin
	if err := q.Order("week_start_date DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *checkinRepo) CountSince(dbc dbctx.Context, clientID uuid.UUID, since time.Time) (int64, error) {
	if clientID == uuid.Nil {
		return 0, fmt.Errorf("missing client_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var count int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.WeeklyCheckin{}).
		Where("client_id = ? AND week_start_date >= ?", clientID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *checkinRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing checkin_id")
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
		Model(&types.WeeklyCheckin{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *checkinRepo) ClientIDsWithCheckinSince(dbc dbctx.Context, clientIDs []uuid.UUID, since time.Time) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(clientIDs))
	if len(clientIDs) == 0 {
		return out, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var ids []uuid.UUID
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.WeeklyCheckin{}).
		Distinct("client_id").
		Where("client_id IN ? AND week_start_date >= ?", clientIDs, since).
		Pluck("client_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
