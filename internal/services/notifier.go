package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
	"github.com/nooch/nooch-backend/internal/realtime"
	"github.com/nooch/nooch-backend/internal/realtime/bus"
)

// Notifier persists notifications and pushes realtime events after the
// triggering transaction has committed. Every method is fire-and-forget;
// a failed notification never fails the operation that produced it.
type Notifier interface {
	ApprovalNeeded(userID uuid.UUID, draftID uuid.UUID)
	ResponseApproved(userID uuid.UUID, messageID uuid.UUID)
	RiskAlert(userID uuid.UUID, clientID uuid.UUID, score int, level string)
}

type notifier struct {
	log           *logger.Logger
	notifications repos.NotificationRepo
	bus           bus.Bus
}

func NewNotifier(log *logger.Logger, notifications repos.NotificationRepo, b bus.Bus) Notifier {
	return &notifier{
		log:           log.With("service", "Notifier"),
		notifications: notifications,
		bus:           b,
	}
}

func (n *notifier) deliver(row *types.Notification) {
	if n == nil || n.notifications == nil || row == nil || row.UserID == uuid.Nil {
		return
	}
	ctx := context.Background()

	created, err := n.notifications.Create(dbctx.Context{Ctx: ctx}, []*types.Notification{row})
	if err != nil {
		n.log.Error("persist notification failed", "user_id", row.UserID, "type", row.Type, "error", err)
		return
	}

	if n.bus == nil {
		return
	}
	ev := realtime.Event{
		UserID: row.UserID,
		Type:   realtime.EventNotificationCreated,
		Data:   map[string]any{"notification": created[0]},
	}
	if err := n.bus.Publish(ctx, ev); err != nil {
		n.log.Warn("publish notification event failed", "user_id", row.UserID, "error", err)
	}
}

func (n *notifier) ApprovalNeeded(userID uuid.UUID, draftID uuid.UUID) {
	refType := "ai_response"
	n.deliver(&types.Notification{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          types.NotificationApprovalNeeded,
		Title:         "New response needs approval",
		Body:          "An AI-drafted reply is waiting for your review.",
		ReferenceID:   &draftID,
		ReferenceType: &refType,
	})
}

func (n *notifier) ResponseApproved(userID uuid.UUID, messageID uuid.UUID) {
	refType := "message"
	n.deliver(&types.Notification{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          types.NotificationResponseApproved,
		Title:         "New message from your coach",
		Body:          "Your coach has responded to your message.",
		ReferenceID:   &messageID,
		ReferenceType: &refType,
	})
}

func (n *notifier) RiskAlert(userID uuid.UUID, clientID uuid.UUID, score int, level string) {
	refType := "client"
	n.deliver(&types.Notification{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          types.NotificationRiskAlert,
		Title:         "Client needs attention",
		Body:          fmt.Sprintf("A client's risk score is now %d (%s).", score, level),
		ReferenceID:   &clientID,
		ReferenceType: &refType,
	})
}
