package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	"github.com/nooch/nooch-backend/internal/data/repos/testutil"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
)

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, coachID uuid.UUID, question string, history []*types.Message) (*DraftResult, error) {
	return nil, errors.New("upstream down")
}

type cannedGenerator struct {
	result DraftResult
}

func (g cannedGenerator) Generate(ctx context.Context, coachID uuid.UUID, question string, history []*types.Message) (*DraftResult, error) {
	out := g.result
	return &out, nil
}

type escrowFixture struct {
	db       *gorm.DB
	svc      EscrowService
	messages repos.MessageRepo
	drafts   repos.DraftRepo

	coachID      uuid.UUID
	clientUserID uuid.UUID
	profileID    uuid.UUID
}

func newEscrowFixture(t *testing.T, gen DraftGenerator) *escrowFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	profiles := repos.NewClientProfileRepo(db, log)
	conversations := repos.NewConversationRepo(db, log)
	messages := repos.NewMessageRepo(db, log)
	drafts := repos.NewDraftRepo(db, log)
	notifications := repos.NewNotificationRepo(db, log)

	notifier := NewNotifier(log, notifications, nil)
	svc := NewEscrowService(db, log, profiles, conversations, messages, drafts, gen, notifier)

	coachID := uuid.New()
	clientUserID := uuid.New()
	profile := &types.ClientProfile{
		ID:      uuid.New(),
		UserID:  clientUserID,
		CoachID: coachID,
	}
	dbc := dbctx.Context{Ctx: context.Background()}
	if _, err := profiles.Create(dbc, []*types.ClientProfile{profile}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	return &escrowFixture{
		db:           db,
		svc:          svc,
		messages:     messages,
		drafts:       drafts,
		coachID:      coachID,
		clientUserID: clientUserID,
		profileID:    profile.ID,
	}
}

func TestEscrowCreateDraftFallback(t *testing.T) {
	fx := newEscrowFixture(t, failingGenerator{})
	ctx := context.Background()

	draft, err := fx.svc.CreateDraft(ctx, fx.clientUserID, "what should I eat before lifting?")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if draft.Status != types.DraftPending {
		t.Fatalf("status = %s, want PENDING", draft.Status)
	}
	if draft.OriginalContent != fallbackDraftContent {
		t.Fatalf("content = %q, want fallback", draft.OriginalContent)
	}
	if draft.Confidence == nil || *draft.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", draft.Confidence)
	}

	// The held message must not leak content before review.
	msg, err := fx.messages.GetByID(dbctx.Context{Ctx: ctx}, draft.MessageID)
	if err != nil || msg == nil {
		t.Fatalf("load held message: msg=%v err=%v", msg, err)
	}
	if msg.Content != "" {
		t.Fatalf("held message content = %q, want empty", msg.Content)
	}
}

func TestEscrowDecideApproveAndDoubleSubmit(t *testing.T) {
	fx := newEscrowFixture(t, cannedGenerator{result: DraftResult{Content: "drink water", Confidence: 0.6, SourceDocs: []SourceDoc{}}})
	ctx := context.Background()

	draft, err := fx.svc.CreateDraft(ctx, fx.clientUserID, "any hydration tips?")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	decided, err := fx.svc.Decide(ctx, fx.coachID, draft.ID, DecisionInput{Kind: DecisionApprove})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decided.Status != types.DraftApproved {
		t.Fatalf("status = %s, want APPROVED", decided.Status)
	}
	if decided.FinalContent == nil || *decided.FinalContent != "drink water" {
		t.Fatalf("final = %v", decided.FinalContent)
	}

	msg, err := fx.messages.GetByID(dbctx.Context{Ctx: ctx}, draft.MessageID)
	if err != nil || msg == nil {
		t.Fatalf("load released message: msg=%v err=%v", msg, err)
	}
	if msg.Content != "drink water" {
		t.Fatalf("released content = %q", msg.Content)
	}

	// A second decision on the same draft loses.
	_, err = fx.svc.Decide(ctx, fx.coachID, draft.ID, DecisionInput{Kind: DecisionReject})
	if err == nil || apperr.KindOf(err) != apperr.KindAlreadyProcessed {
		t.Fatalf("double submit: err = %v, want ALREADY_PROCESSED", err)
	}
}

func TestEscrowDecideConcurrent(t *testing.T) {
	fx := newEscrowFixture(t, cannedGenerator{result: DraftResult{Content: "stretch daily", SourceDocs: []SourceDoc{}}})
	ctx := context.Background()

	draft, err := fx.svc.CreateDraft(ctx, fx.clientUserID, "my back hurts after squats")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	// Two coaches' tabs race the same draft; exactly one decision may land.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Decide(ctx, fx.coachID, draft.ID, DecisionInput{Kind: DecisionApprove})
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperr.KindOf(err) == apperr.KindAlreadyProcessed:
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins = %d losses = %d, want exactly one of each", wins, losses)
	}

	got, err := fx.drafts.GetByID(dbctx.Context{Ctx: ctx}, draft.ID)
	if err != nil || got == nil {
		t.Fatalf("reload draft: got=%v err=%v", got, err)
	}
	if got.Status != types.DraftApproved {
		t.Fatalf("status = %s, want APPROVED", got.Status)
	}
}

func TestEscrowListPendingContext(t *testing.T) {
	fx := newEscrowFixture(t, cannedGenerator{result: DraftResult{Content: "eat more protein", SourceDocs: []SourceDoc{}}})
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	users := repos.NewUserRepo(fx.db, testutil.Logger(t))
	if _, err := users.Create(dbc, []*types.User{{
		ID:           fx.clientUserID,
		Email:        "dana@example.com",
		PasswordHash: "x",
		Name:         "Dana Reeves",
		Role:         types.RoleClient,
	}}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	draft, err := fx.svc.CreateDraft(ctx, fx.clientUserID, "how much protein do I need?")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	pending, err := fx.svc.ListPending(ctx, fx.coachID)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d entries, want 1", len(pending))
	}
	entry := pending[0]
	if entry.Draft == nil || entry.Draft.ID != draft.ID {
		t.Fatalf("entry draft = %v, want %s", entry.Draft, draft.ID)
	}
	if entry.ConversationID != draft.ConversationID {
		t.Fatalf("conversation = %s, want %s", entry.ConversationID, draft.ConversationID)
	}
	if entry.Client.ID != fx.profileID {
		t.Fatalf("client id = %s, want %s", entry.Client.ID, fx.profileID)
	}
	if entry.Client.Name != "Dana Reeves" || entry.Client.Email != "dana@example.com" {
		t.Fatalf("client = %+v", entry.Client)
	}
	if entry.ClientMessage != "how much protein do I need?" {
		t.Fatalf("client message = %q", entry.ClientMessage)
	}
}

func TestEscrowDecideOwnership(t *testing.T) {
	fx := newEscrowFixture(t, cannedGenerator{result: DraftResult{Content: "ok"}})
	ctx := context.Background()

	draft, err := fx.svc.CreateDraft(ctx, fx.clientUserID, "question")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	otherCoach := uuid.New()
	_, err = fx.svc.Decide(ctx, otherCoach, draft.ID, DecisionInput{Kind: DecisionApprove})
	if err == nil || apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("foreign coach: err = %v, want NOT_FOUND", err)
	}

	_, err = fx.svc.Decide(ctx, fx.coachID, uuid.New(), DecisionInput{Kind: DecisionApprove})
	if err == nil || apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown draft: err = %v, want NOT_FOUND", err)
	}
}

func TestEscrowBulkApproveAllOrNothing(t *testing.T) {
	fx := newEscrowFixture(t, cannedGenerator{result: DraftResult{Content: "bulk reply"}})
	ctx := context.Background()

	d1, err := fx.svc.CreateDraft(ctx, fx.clientUserID, "first")
	if err != nil {
		t.Fatalf("CreateDraft d1: %v", err)
	}
	d2, err := fx.svc.CreateDraft(ctx, fx.clientUserID, "second")
	if err != nil {
		t.Fatalf("CreateDraft d2: %v", err)
	}

	// Reject d2 first; the batch must then fail without touching d1.
	if _, err := fx.svc.Decide(ctx, fx.coachID, d2.ID, DecisionInput{Kind: DecisionReject}); err != nil {
		t.Fatalf("reject d2: %v", err)
	}

	if _, err := fx.svc.BulkApprove(ctx, fx.coachID, []uuid.UUID{d1.ID, d2.ID}); err == nil || apperr.KindOf(err) != apperr.KindAlreadyProcessed {
		t.Fatalf("mixed batch: err = %v, want ALREADY_PROCESSED", err)
	}

	got, err := fx.drafts.GetByID(dbctx.Context{Ctx: ctx}, d1.ID)
	if err != nil || got == nil {
		t.Fatalf("reload d1: got=%v err=%v", got, err)
	}
	if got.Status != types.DraftPending {
		t.Fatalf("d1 status = %s, want PENDING after failed batch", got.Status)
	}

	// A clean batch goes through.
	n, err := fx.svc.BulkApprove(ctx, fx.coachID, []uuid.UUID{d1.ID})
	if err != nil {
		t.Fatalf("BulkApprove: %v", err)
	}
	if n != 1 {
		t.Fatalf("approved = %d, want 1", n)
	}

	msg, err := fx.messages.GetByID(dbctx.Context{Ctx: ctx}, d1.MessageID)
	if err != nil || msg == nil || msg.Content != "bulk reply" {
		t.Fatalf("released message = %v err=%v", msg, err)
	}
}
