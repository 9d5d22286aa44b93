package notify

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/data/repos/testutil"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
)

func TestNotificationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewNotificationRepo(db, testutil.Logger(t))

	userA := uuid.New()
	userB := uuid.New()

	rows := []*types.Notification{
		{ID: uuid.New(), UserID: userA, Type: types.NotificationApprovalNeeded, Title: "t1", Body: "b1"},
		{ID: uuid.New(), UserID: userA, Type: types.NotificationResponseApproved, Title: "t2", Body: "b2"},
		{ID: uuid.New(), UserID: userB, Type: types.NotificationApprovalNeeded, Title: "t3", Body: "b3"},
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if count, err := repo.CountUnread(dbc, userA); err != nil || count != 2 {
		t.Fatalf("CountUnread: count=%d err=%v", count, err)
	}

	// userB cannot flip userA's notification.
	if ok, err := repo.MarkRead(dbc, userB, rows[0].ID); err != nil || ok {
		t.Fatalf("MarkRead cross-user: ok=%v err=%v", ok, err)
	}

	if ok, err := repo.MarkRead(dbc, userA, rows[0].ID); err != nil || !ok {
		t.Fatalf("MarkRead: ok=%v err=%v", ok, err)
	}

	unread, err := repo.ListByUser(dbc, userA, true, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(unread) != 1 || unread[0].ID != rows[1].ID {
		t.Fatalf("unread = %v", unread)
	}

	if n, err := repo.MarkAllRead(dbc, userA); err != nil || n != 1 {
		t.Fatalf("MarkAllRead: n=%d err=%v", n, err)
	}
	if count, err := repo.CountUnread(dbc, userA); err != nil || count != 0 {
		t.Fatalf("CountUnread after MarkAllRead: count=%d err=%v", count, err)
	}
}
