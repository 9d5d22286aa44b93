package services

import (
	"math"
	"testing"

	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
)

func pendingDraft(content string) *types.DraftResponse {
	return &types.DraftResponse{
		OriginalContent: content,
		Status:          types.DraftPending,
	}
}

func TestDecideDraftApprove(t *testing.T) {
	d := pendingDraft("original body")
	out, err := decideDraft(d, DecisionInput{Kind: DecisionApprove})
	if err != nil {
		t.Fatalf("decideDraft: %v", err)
	}
	if out.Status != types.DraftApproved {
		t.Fatalf("status = %s, want APPROVED", out.Status)
	}
	if out.FinalContent == nil || *out.FinalContent != "original body" {
		t.Fatalf("final = %v, want original body", out.FinalContent)
	}
	if out.EditedContent != nil {
		t.Fatalf("approve should not set edited content")
	}
	if !out.ReleaseMessage {
		t.Fatal("approve must release the message")
	}
}

func TestDecideDraftEdit(t *testing.T) {
	cases := []struct {
		name     string
		edited   string
		wantErr  apperr.Kind
		wantText string
	}{
		{"plain edit", "tightened reply", "", "tightened reply"},
		{"trims whitespace", "  spaced out  ", "", "spaced out"},
		{"empty rejected", "", apperr.KindInvalidInput, ""},
		{"whitespace only rejected", "   ", apperr.KindInvalidInput, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := decideDraft(pendingDraft("original"), DecisionInput{Kind: DecisionEdit, EditedContent: tc.edited})
			if tc.wantErr != "" {
				if err == nil || apperr.KindOf(err) != tc.wantErr {
					t.Fatalf("err = %v, want kind %s", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decideDraft: %v", err)
			}
			if out.Status != types.DraftEdited {
				t.Fatalf("status = %s, want EDITED", out.Status)
			}
			if out.EditedContent == nil || *out.EditedContent != tc.wantText {
				t.Fatalf("edited = %v, want %q", out.EditedContent, tc.wantText)
			}
			if out.FinalContent == nil || *out.FinalContent != tc.wantText {
				t.Fatalf("final = %v, want %q", out.FinalContent, tc.wantText)
			}
			if !out.ReleaseMessage {
				t.Fatal("edit must release the message")
			}
		})
	}
}

func TestDecideDraftReject(t *testing.T) {
	out, err := decideDraft(pendingDraft("original"), DecisionInput{Kind: DecisionReject, Reason: "tone is off"})
	if err != nil {
		t.Fatalf("decideDraft: %v", err)
	}
	if out.Status != types.DraftRejected {
		t.Fatalf("status = %s, want REJECTED", out.Status)
	}
	if out.RejectionReason == nil || *out.RejectionReason != "tone is off" {
		t.Fatalf("reason = %v", out.RejectionReason)
	}
	if out.ReleaseMessage {
		t.Fatal("reject must not release the message")
	}
	if out.FinalContent != nil {
		t.Fatal("reject must not set final content")
	}

	out, err = decideDraft(pendingDraft("original"), DecisionInput{Kind: DecisionReject})
	if err != nil {
		t.Fatalf("decideDraft: %v", err)
	}
	if out.RejectionReason == nil || *out.RejectionReason != defaultRejectionReason {
		t.Fatalf("default reason = %v, want %q", out.RejectionReason, defaultRejectionReason)
	}
}

func TestDecideDraftTerminalStates(t *testing.T) {
	for _, status := range []types.DraftStatus{types.DraftApproved, types.DraftEdited, types.DraftRejected} {
		d := pendingDraft("original")
		d.Status = status
		for _, kind := range []DecisionKind{DecisionApprove, DecisionEdit, DecisionReject} {
			_, err := decideDraft(d, DecisionInput{Kind: kind, EditedContent: "x"})
			if err == nil || apperr.KindOf(err) != apperr.KindAlreadyProcessed {
				t.Fatalf("status %s kind %s: err = %v, want ALREADY_PROCESSED", status, kind, err)
			}
		}
	}
}

func TestDecideDraftInvalidKindAndNil(t *testing.T) {
	if _, err := decideDraft(pendingDraft("x"), DecisionInput{Kind: "escalate"}); err == nil || apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("unknown kind: err = %v, want INVALID_INPUT", err)
	}
	if _, err := decideDraft(nil, DecisionInput{Kind: DecisionApprove}); err == nil || apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("nil draft: err = %v, want NOT_FOUND", err)
	}
}

func TestDraftConfidence(t *testing.T) {
	cases := []struct {
		docs int
		want float64
	}{
		{0, 0.3},
		{1, 0.6},
		{2, 0.7},
		{4, 0.9},
		{10, 0.9},
	}
	for _, tc := range cases {
		if got := draftConfidence(tc.docs); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("draftConfidence(%d) = %v, want %v", tc.docs, got, tc.want)
		}
	}
}
