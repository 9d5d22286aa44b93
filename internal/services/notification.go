package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	db            *gorm.DB
	log           *logger.Logger
	notifications repos.NotificationRepo
}

func NewNotificationService(db *gorm.DB, log *logger.Logger, notifications repos.NotificationRepo) NotificationService {
	return &notificationService{
		db:            db,
		log:           log.With("service", "NotificationService"),
		notifications: notifications,
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error) {
	return s.notifications.ListByUser(dbctx.Context{Ctx: ctx}, userID, unreadOnly, limit)
}

func (s *notificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.CountUnread(dbctx.Context{Ctx: ctx}, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.notifications.MarkRead(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !ok {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(dbctx.Context{Ctx: ctx}, userID)
}
