package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nooch/nooch-backend/internal/data/repos/testutil"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
)

func seedConversation(t *testing.T, dbc dbctx.Context, coachID uuid.UUID) *types.Conversation {
	t.Helper()
	conv := &types.Conversation{ID: uuid.New(), ClientID: uuid.New(), CoachID: coachID}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(conv).Error; err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	return conv
}

func seedDraft(t *testing.T, dbc dbctx.Context, repo DraftRepo, conv *types.Conversation, content string) *types.DraftResponse {
	t.Helper()
	msg := &types.Message{ID: uuid.New(), ConversationID: conv.ID, Type: types.MessageTypeAI, Content: ""}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(msg).Error; err != nil {
		t.Fatalf("seed message: %v", err)
	}
	d := &types.DraftResponse{
		ID:              uuid.New(),
		MessageID:       msg.ID,
		ConversationID:  conv.ID,
		OriginalContent: content,
		Status:          types.DraftPending,
	}
	if _, err := repo.Create(dbc, []*types.DraftResponse{d}); err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	return d
}

func TestDraftRepoDecisionRace(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewDraftRepo(db, testutil.Logger(t))

	coachID := uuid.New()
	conv := seedConversation(t, dbc, coachID)
	d := seedDraft(t, dbc, repo, conv, "draft body")

	now := time.Now().UTC()
	won, err := repo.UpdateIfPending(dbc, d.ID, map[string]interface{}{
		"status":        types.DraftApproved,
		"final_content": d.OriginalContent,
		"reviewed_by":   coachID,
		"reviewed_at":   now,
	})
	if err != nil || !won {
		t.Fatalf("first decision: won=%v err=%v", won, err)
	}

	won, err = repo.UpdateIfPending(dbc, d.ID, map[string]interface{}{
		"status":           types.DraftRejected,
		"rejection_reason": "late",
		"reviewed_by":      coachID,
		"reviewed_at":      now,
	})
	if err != nil {
		t.Fatalf("second decision: %v", err)
	}
	if won {
		t.Fatal("second decision should not win after first")
	}

	got, err := repo.GetByID(dbc, d.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got.Status != types.DraftApproved {
		t.Fatalf("status = %s, want APPROVED", got.Status)
	}
	if got.FinalContent == nil || *got.FinalContent != d.OriginalContent {
		t.Fatalf("final_content = %v, want original", got.FinalContent)
	}
}

func TestDraftRepoApproveAllPending(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewDraftRepo(db, testutil.Logger(t))

	coachID := uuid.New()
	conv := seedConversation(t, dbc, coachID)
	d1 := seedDraft(t, dbc, repo, conv, "one")
	d2 := seedDraft(t, dbc, repo, conv, "two")
	d3 := seedDraft(t, dbc, repo, conv, "three")

	// Knock d2 out of PENDING first.
	now := time.Now().UTC()
	if won, err := repo.UpdateIfPending(dbc, d2.ID, map[string]interface{}{
		"status":           types.DraftRejected,
		"rejection_reason": "off topic",
		"reviewed_by":      coachID,
		"reviewed_at":      now,
	}); err != nil || !won {
		t.Fatalf("reject d2: won=%v err=%v", won, err)
	}

	n, err := repo.ApproveAllPending(dbc, []uuid.UUID{d1.ID, d2.ID, d3.ID}, coachID, now)
	if err != nil {
		t.Fatalf("ApproveAllPending: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows affected = %d, want 2", n)
	}

	for _, id := range []uuid.UUID{d1.ID, d3.ID} {
		got, err := repo.GetByID(dbc, id)
		if err != nil || got == nil {
			t.Fatalf("GetByID: got=%v err=%v", got, err)
		}
		if got.Status != types.DraftApproved {
			t.Fatalf("status = %s, want APPROVED", got.Status)
		}
		if got.FinalContent == nil || *got.FinalContent != got.OriginalContent {
			t.Fatalf("final_content = %v, want original", got.FinalContent)
		}
	}
}

func TestDraftRepoListPendingByCoach(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewDraftRepo(db, testutil.Logger(t))

	coachA := uuid.New()
	coachB := uuid.New()
	convA := seedConversation(t, dbc, coachA)
	convB := seedConversation(t, dbc, coachB)

	seedDraft(t, dbc, repo, convA, "for A 1")
	seedDraft(t, dbc, repo, convA, "for A 2")
	seedDraft(t, dbc, repo, convB, "for B")

	rows, err := repo.ListPendingByCoach(dbc, coachA)
	if err != nil {
		t.Fatalf("ListPendingByCoach: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	for _, d := range rows {
		if d.ConversationID != convA.ID {
			t.Fatalf("draft %s belongs to other coach", d.ID)
		}
	}

	if count, err := repo.CountPendingByCoach(dbc, coachB); err != nil || count != 1 {
		t.Fatalf("CountPendingByCoach: count=%d err=%v", count, err)
	}
}
