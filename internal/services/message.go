package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type MessageService interface {
	// ClientHistory returns the client's conversation without unreleased AI
	// replies; held drafts stay invisible until a coach decides.
	ClientHistory(ctx context.Context, clientUserID uuid.UUID, limit, offset int) ([]*types.Message, error)
	CoachHistory(ctx context.Context, coachID, clientID uuid.UUID, limit, offset int) ([]*types.Message, error)
	// CoachSend bypasses escrow: the coach speaks for themselves.
	CoachSend(ctx context.Context, coachID, clientID uuid.UUID, content string) (*types.Message, error)
	ListConversations(ctx context.Context, coachID uuid.UUID) ([]*types.Conversation, error)
}

type messageService struct {
	db  *gorm.DB
	log *logger.Logger

	profiles      repos.ClientProfileRepo
	conversations repos.ConversationRepo
	messages      repos.MessageRepo
	notifier      Notifier
}

func NewMessageService(
	db *gorm.DB,
	log *logger.Logger,
	profiles repos.ClientProfileRepo,
	conversations repos.ConversationRepo,
	messages repos.MessageRepo,
	notifier Notifier,
) MessageService {
	return &messageService{
		db:            db,
		log:           log.With("service", "MessageService"),
		profiles:      profiles,
		conversations: conversations,
		messages:      messages,
		notifier:      notifier,
	}
}

func (s *messageService) ClientHistory(ctx context.Context, clientUserID uuid.UUID, limit, offset int) ([]*types.Message, error) {
	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.GetByUserID(dbc, clientUserID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("client profile not found")
	}
	conv, err := s.conversations.GetByClient(dbc, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil {
		return []*types.Message{}, nil
	}

	rows, err := s.messages.ListByConversation(dbc, conv.ID, limit, offset)
	if err != nil {
		return nil, err
	}

	visible := make([]*types.Message, 0, len(rows))
	for _, m := range rows {
		if m.Type == types.MessageTypeAI && m.Content == "" {
			continue
		}
		visible = append(visible, m)
	}
	return visible, nil
}

func (s *messageService) ownedConversation(ctx context.Context, coachID, clientID uuid.UUID) (*types.Conversation, *types.ClientProfile, error) {
	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.GetByID(dbc, clientID)
	if err != nil {
		return nil, nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil || profile.CoachID != coachID {
		return nil, nil, apperr.NotFound("client not found")
	}
	conv, err := s.conversations.GetByClient(dbc, clientID)
	if err != nil {
		return nil, nil, fmt.Errorf("load conversation: %w", err)
	}
	return conv, profile, nil
}

func (s *messageService) ListConversations(ctx context.Context, coachID uuid.UUID) ([]*types.Conversation, error) {
	return s.conversations.ListByCoach(dbctx.Context{Ctx: ctx}, coachID)
}

func (s *messageService) CoachHistory(ctx context.Context, coachID, clientID uuid.UUID, limit, offset int) ([]*types.Message, error) {
	conv, _, err := s.ownedConversation(ctx, coachID, clientID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []*types.Message{}, nil
	}
	// Coaches see everything, held drafts included.
	return s.messages.ListByConversation(dbctx.Context{Ctx: ctx}, conv.ID, limit, offset)
}

func (s *messageService) CoachSend(ctx context.Context, coachID, clientID uuid.UUID, content string) (*types.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidInput("message content required")
	}

	conv, profile, err := s.ownedConversation(ctx, coachID, clientID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv = &types.Conversation{
			ID:       uuid.New(),
			ClientID: clientID,
			CoachID:  coachID,
		}
		if _, err := s.conversations.Create(dbctx.Context{Ctx: ctx}, []*types.Conversation{conv}); err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
	}

	msg := &types.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       &coachID,
		Type:           types.MessageTypeCoach,
		Content:        content,
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.messages.Create(dbctx.Context{Ctx: ctx, Tx: tx}, []*types.Message{msg})
		return err
	}); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	s.notifier.ResponseApproved(profile.UserID, msg.ID)
	return msg, nil
}
