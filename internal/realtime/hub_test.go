package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
	}
	return Event{}
}

func TestHubScopesEventsByUser(t *testing.T) {
	hub := NewHub(mustTestLogger(t))

	userA := uuid.New()
	userB := uuid.New()
	clientA := hub.NewClient(userA)
	clientB := hub.NewClient(userB)

	hub.Broadcast(Event{UserID: userA, Type: EventNotificationCreated, Data: map[string]any{"seq": 1}})

	got := recvEvent(t, clientA.Outbound, time.Second)
	if got.Type != EventNotificationCreated {
		t.Fatalf("event type = %s, want %s", got.Type, EventNotificationCreated)
	}

	select {
	case ev := <-clientB.Outbound:
		t.Fatalf("clientB should not receive userA event, got %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	userID := uuid.New()

	client := hub.NewClient(userID)
	hub.Broadcast(Event{UserID: userID, Type: EventNotificationCreated, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Event{UserID: userID, Type: EventDraftDecided, Data: map[string]any{"seq": 2}})

	first := recvEvent(t, client.Outbound, time.Second)
	second := recvEvent(t, client.Outbound, time.Second)
	if first.Type != EventNotificationCreated || second.Type != EventDraftDecided {
		t.Fatalf("out of order: first=%s second=%s", first.Type, second.Type)
	}

	hub.CloseClient(client)
	select {
	case _, ok := <-client.Outbound:
		if ok {
			t.Fatal("outbound should be closed after CloseClient")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for channel close")
	}

	reconnected := hub.NewClient(userID)
	hub.Broadcast(Event{UserID: userID, Type: EventRiskUpdated})
	got := recvEvent(t, reconnected.Outbound, time.Second)
	if got.Type != EventRiskUpdated {
		t.Fatalf("reconnect event = %s, want %s", got.Type, EventRiskUpdated)
	}
}
