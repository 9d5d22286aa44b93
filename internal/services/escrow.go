package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/envutil"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

// fallbackDraftContent is what the client's conversation gets when generation
// fails outright. The coach still reviews it like any other draft.
const fallbackDraftContent = "Thank you for your message. Your coach will respond shortly."

const defaultRejectionReason = "No reason provided"

type DecisionKind string

const (
	DecisionApprove DecisionKind = "approve"
	DecisionEdit    DecisionKind = "edit"
	DecisionReject  DecisionKind = "reject"
)

type DecisionInput struct {
	Kind          DecisionKind
	EditedContent string
	Reason        string
}

// DecisionOutcome captures everything a decision changes: the draft row
// updates, whether the held message gets released, and what the client sees.
type DecisionOutcome struct {
	Status          types.DraftStatus
	FinalContent    *string
	EditedContent   *string
	RejectionReason *string
	ReleaseMessage  bool
}

// decideDraft validates a coach decision against the draft's current state.
// It is pure: no clocks, no I/O. Persisting the outcome is the caller's job.
func decideDraft(d *types.DraftResponse, in DecisionInput) (DecisionOutcome, error) {
	if d == nil {
		return DecisionOutcome{}, apperr.NotFound("draft not found")
	}
	if d.Status.Terminal() {
		return DecisionOutcome{}, apperr.AlreadyProcessed("draft already reviewed")
	}

	switch in.Kind {
	case DecisionApprove:
		final := d.OriginalContent
		return DecisionOutcome{
			Status:         types.DraftApproved,
			FinalContent:   &final,
			ReleaseMessage: true,
		}, nil

	case DecisionEdit:
		edited := strings.TrimSpace(in.EditedContent)
		if edited == "" {
			return DecisionOutcome{}, apperr.InvalidInput("edited content required")
		}
		return DecisionOutcome{
			Status:         types.DraftEdited,
			EditedContent:  &edited,
			FinalContent:   &edited,
			ReleaseMessage: true,
		}, nil

	case DecisionReject:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			reason = defaultRejectionReason
		}
		return DecisionOutcome{
			Status:          types.DraftRejected,
			RejectionReason: &reason,
			ReleaseMessage:  false,
		}, nil

	default:
		return DecisionOutcome{}, apperr.InvalidInput(fmt.Sprintf("unknown decision %q", in.Kind))
	}
}

// =========================
// Escrow service
// =========================

// PendingApproval is one review-queue entry with enough context to act on in
// place: who the client is and what they last said.
type PendingApproval struct {
	Draft          *types.DraftResponse `json:"draft"`
	ConversationID uuid.UUID            `json:"conversation_id"`
	Client         PendingClient        `json:"client"`
	ClientMessage  string               `json:"client_message"`
}

type PendingClient struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type EscrowService interface {
	// CreateDraft records the client's message, generates a held reply, and
	// queues it for coach review. The client message survives even when
	// generation fails; a fallback draft takes its place.
	CreateDraft(ctx context.Context, clientUserID uuid.UUID, content string) (*types.DraftResponse, error)
	ListPending(ctx context.Context, coachID uuid.UUID) ([]*PendingApproval, error)
	PendingCount(ctx context.Context, coachID uuid.UUID) (int64, error)
	ListHistory(ctx context.Context, coachID uuid.UUID, limit, offset int) ([]*types.DraftResponse, error)
	Decide(ctx context.Context, coachID, draftID uuid.UUID, in DecisionInput) (*types.DraftResponse, error)
	// BulkApprove is all-or-nothing: every draft must exist, belong to the
	// coach, and still be pending, or none of them change.
	BulkApprove(ctx context.Context, coachID uuid.UUID, draftIDs []uuid.UUID) (int, error)
}

type escrowService struct {
	db  *gorm.DB
	log *logger.Logger

	profiles      repos.ClientProfileRepo
	conversations repos.ConversationRepo
	messages      repos.MessageRepo
	drafts        repos.DraftRepo

	generator  DraftGenerator
	notifier   Notifier
	genTimeout time.Duration
}

func NewEscrowService(
	db *gorm.DB,
	log *logger.Logger,
	profiles repos.ClientProfileRepo,
	conversations repos.ConversationRepo,
	messages repos.MessageRepo,
	drafts repos.DraftRepo,
	generator DraftGenerator,
	notifier Notifier,
) EscrowService {
	return &escrowService{
		db:            db,
		log:           log.With("service", "EscrowService"),
		profiles:      profiles,
		conversations: conversations,
		messages:      messages,
		drafts:        drafts,
		generator:     generator,
		notifier:      notifier,
		genTimeout:    envutil.Duration("DRAFT_GEN_TIMEOUT", 45*time.Second),
	}
}

func (s *escrowService) findOrCreateConversation(ctx context.Context, profile *types.ClientProfile) (*types.Conversation, error) {
	dbc := dbctx.Context{Ctx: ctx}
	conv, err := s.conversations.GetByClient(dbc, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv != nil {
		return conv, nil
	}
	conv = &types.Conversation{
		ID:       uuid.New(),
		ClientID: profile.ID,
		CoachID:  profile.CoachID,
	}
	if _, err := s.conversations.Create(dbc, []*types.Conversation{conv}); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (s *escrowService) CreateDraft(ctx context.Context, clientUserID uuid.UUID, content string) (*types.DraftResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.InvalidInput("message content required")
	}

	profile, err := s.profiles.GetByUserID(dbctx.Context{Ctx: ctx}, clientUserID)
	if err != nil {
		return nil, fmt.Errorf("load client profile: %w", err)
	}
	if profile == nil {
		return nil, apperr.NotFound("client profile not found")
	}

	conv, err := s.findOrCreateConversation(ctx, profile)
	if err != nil {
		return nil, err
	}

	// The client's message is durable no matter what happens to generation.
	userMsg := &types.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       &clientUserID,
		Type:           types.MessageTypeUser,
		Content:        content,
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.messages.Create(dbctx.Context{Ctx: ctx, Tx: tx}, []*types.Message{userMsg})
		return err
	}); err != nil {
		return nil, fmt.Errorf("persist client message: %w", err)
	}

	result := s.generateWithFallback(ctx, conv, content)

	sourceDocs, err := json.Marshal(result.SourceDocs)
	if err != nil {
		return nil, fmt.Errorf("marshal source docs: %w", err)
	}

	aiMsg := &types.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Type:           types.MessageTypeAI,
		// Content stays empty until a coach releases the draft.
		Content: "",
	}
	confidence := result.Confidence
	draft := &types.DraftResponse{
		ID:              uuid.New(),
		MessageID:       aiMsg.ID,
		ConversationID:  conv.ID,
		OriginalContent: result.Content,
		Status:          types.DraftPending,
		SourceDocs:      sourceDocs,
		Confidence:      &confidence,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.messages.Create(dbc, []*types.Message{aiMsg}); err != nil {
			return err
		}
		_, err := s.drafts.Create(dbc, []*types.DraftResponse{draft})
		return err
	}); err != nil {
		return nil, fmt.Errorf("persist draft: %w", err)
	}

	coach, err := s.coachUserID(ctx, conv)
	if err != nil {
		s.log.Warn("resolve coach for notification failed", "conversation_id", conv.ID, "error", err)
	} else {
		s.notifier.ApprovalNeeded(coach, draft.ID)
	}

	return draft, nil
}

func (s *escrowService) generateWithFallback(ctx context.Context, conv *types.Conversation, question string) *DraftResult {
	if s.generator == nil {
		return &DraftResult{
			Content:    fallbackDraftContent,
			SourceDocs: []SourceDoc{},
			Confidence: 0,
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	history, err := s.messages.ListByConversation(dbctx.Context{Ctx: ctx}, conv.ID, 10, 0)
	if err != nil {
		s.log.Warn("load history for generation failed", "conversation_id", conv.ID, "error", err)
		history = nil
	}

	result, err := s.generator.Generate(genCtx, conv.CoachID, question, history)
	if err != nil {
		s.log.Error("draft generation failed, using fallback", "conversation_id", conv.ID, "error", err)
		return &DraftResult{
			Content:    fallbackDraftContent,
			SourceDocs: []SourceDoc{},
			Confidence: 0,
		}
	}
	return result
}

// coachUserID maps a conversation's coach to the user receiving notifications.
// Coaches are users directly; the conversation stores their user id.
func (s *escrowService) coachUserID(ctx context.Context, conv *types.Conversation) (uuid.UUID, error) {
	if conv == nil || conv.CoachID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("missing coach on conversation")
	}
	return conv.CoachID, nil
}

func (s *escrowService) clientUserID(ctx context.Context, conv *types.Conversation) (uuid.UUID, error) {
	profile, err := s.profiles.GetByID(dbctx.Context{Ctx: ctx}, conv.ClientID)
	if err != nil {
		return uuid.Nil, err
	}
	if profile == nil {
		return uuid.Nil, fmt.Errorf("client profile %s not found", conv.ClientID)
	}
	return profile.UserID, nil
}

func (s *escrowService) ListPending(ctx context.Context, coachID uuid.UUID) ([]*PendingApproval, error) {
	dbc := dbctx.Context{Ctx: ctx}
	drafts, err := s.drafts.ListPendingByCoach(dbc, coachID)
	if err != nil {
		return nil, err
	}

	clients := map[uuid.UUID]PendingClient{}
	latest := map[uuid.UUID]string{}
	out := make([]*PendingApproval, 0, len(drafts))
	for _, d := range drafts {
		client, ok := clients[d.ConversationID]
		if !ok {
			conv, err := s.conversations.GetByID(dbc, d.ConversationID)
			if err != nil {
				return nil, fmt.Errorf("load conversation: %w", err)
			}
			if conv == nil {
				return nil, fmt.Errorf("conversation %s not found", d.ConversationID)
			}
			profile, err := s.profiles.GetByID(dbc, conv.ClientID)
			if err != nil {
				return nil, fmt.Errorf("load client profile: %w", err)
			}
			if profile != nil {
				client.ID = profile.ID
				if profile.User != nil {
					client.Name = profile.User.Name
					client.Email = profile.User.Email
				}
			}
			clients[d.ConversationID] = client

			msg, err := s.messages.LatestUserMessage(dbc, d.ConversationID)
			if err != nil {
				return nil, fmt.Errorf("load latest client message: %w", err)
			}
			text := "No message"
			if msg != nil && msg.Content != "" {
				text = msg.Content
			}
			latest[d.ConversationID] = text
		}
		out = append(out, &PendingApproval{
			Draft:          d,
			ConversationID: d.ConversationID,
			Client:         client,
			ClientMessage:  latest[d.ConversationID],
		})
	}
	return out, nil
}

func (s *escrowService) PendingCount(ctx context.Context, coachID uuid.UUID) (int64, error) {
	return s.drafts.CountPendingByCoach(dbctx.Context{Ctx: ctx}, coachID)
}

func (s *escrowService) ListHistory(ctx context.Context, coachID uuid.UUID, limit, offset int) ([]*types.DraftResponse, error) {
	return s.drafts.ListDecidedByCoach(dbctx.Context{Ctx: ctx}, coachID, limit, offset)
}

// ownedDraft loads a draft and verifies the coach owns its conversation.
// Missing and not-owned collapse to the same answer so draft ids cannot be
// probed across coaches.
func (s *escrowService) ownedDraft(ctx context.Context, coachID, draftID uuid.UUID) (*types.DraftResponse, *types.Conversation, error) {
	dbc := dbctx.Context{Ctx: ctx}
	draft, err := s.drafts.GetByID(dbc, draftID)
	if err != nil {
		return nil, nil, fmt.Errorf("load draft: %w", err)
	}
	if draft == nil {
		return nil, nil, apperr.NotFound("draft not found")
	}
	conv, err := s.conversations.GetByID(dbc, draft.ConversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil || conv.CoachID != coachID {
		return nil, nil, apperr.NotFound("draft not found")
	}
	return draft, conv, nil
}

func (s *escrowService) Decide(ctx context.Context, coachID, draftID uuid.UUID, in DecisionInput) (*types.DraftResponse, error) {
	draft, conv, err := s.ownedDraft(ctx, coachID, draftID)
	if err != nil {
		return nil, err
	}

	outcome, err := decideDraft(draft, in)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":      outcome.Status,
		"reviewed_by": coachID,
		"reviewed_at": now,
	}
	if outcome.FinalContent != nil {
		updates["final_content"] = *outcome.FinalContent
	}
	if outcome.EditedContent != nil {
		updates["edited_content"] = *outcome.EditedContent
	}
	if outcome.RejectionReason != nil {
		updates["rejection_reason"] = *outcome.RejectionReason
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		won, err := s.drafts.UpdateIfPending(dbc, draft.ID, updates)
		if err != nil {
			return err
		}
		if !won {
			return apperr.AlreadyProcessed("draft already reviewed")
		}
		if outcome.ReleaseMessage {
			return s.messages.UpdateContent(dbc, draft.MessageID, *outcome.FinalContent)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.ReleaseMessage {
		if clientUser, cErr := s.clientUserID(ctx, conv); cErr != nil {
			s.log.Warn("resolve client for notification failed", "conversation_id", conv.ID, "error", cErr)
		} else {
			s.notifier.ResponseApproved(clientUser, draft.MessageID)
		}
	}

	return s.drafts.GetByID(dbctx.Context{Ctx: ctx}, draft.ID)
}

func (s *escrowService) BulkApprove(ctx context.Context, coachID uuid.UUID, draftIDs []uuid.UUID) (int, error) {
	if len(draftIDs) == 0 {
		return 0, apperr.InvalidInput("no draft ids given")
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range draftIDs {
		if seen[id] {
			return 0, apperr.InvalidInput("duplicate draft id " + id.String())
		}
		seen[id] = true
	}

	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.drafts.GetByIDs(dbc, draftIDs)
	if err != nil {
		return 0, fmt.Errorf("load drafts: %w", err)
	}
	if len(rows) != len(draftIDs) {
		return 0, apperr.NotFound("one or more drafts not found")
	}

	convs := map[uuid.UUID]*types.Conversation{}
	for _, d := range rows {
		if d.Status.Terminal() {
			return 0, apperr.AlreadyProcessed("draft " + d.ID.String() + " already reviewed")
		}
		conv, ok := convs[d.ConversationID]
		if !ok {
			conv, err = s.conversations.GetByID(dbc, d.ConversationID)
			if err != nil {
				return 0, fmt.Errorf("load conversation: %w", err)
			}
			convs[d.ConversationID] = conv
		}
		if conv == nil || conv.CoachID != coachID {
			return 0, apperr.NotFound("one or more drafts not found")
		}
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		n, err := s.drafts.ApproveAllPending(txc, draftIDs, coachID, now)
		if err != nil {
			return err
		}
		// A decision raced in between validation and update; roll back rather
		// than approve a partial batch.
		if n != int64(len(draftIDs)) {
			return apperr.AlreadyProcessed("one or more drafts already reviewed")
		}
		for _, d := range rows {
			if err := s.messages.UpdateContent(txc, d.MessageID, d.OriginalContent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, d := range rows {
		conv := convs[d.ConversationID]
		if clientUser, cErr := s.clientUserID(ctx, conv); cErr != nil {
			s.log.Warn("resolve client for notification failed", "conversation_id", conv.ID, "error", cErr)
		} else {
			s.notifier.ResponseApproved(clientUser, d.MessageID)
		}
	}

	return len(rows), nil
}
