package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

func newTokenService(t *testing.T) *authService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	svc, err := NewAuthService(nil, log, nil, nil)
	if err != nil {
		t.Fatalf("init auth service: %v", err)
	}
	return svc.(*authService)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTokenService(t)

	user := &types.User{ID: uuid.New(), Role: types.RoleCoach}
	token, err := svc.mintToken(user)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		t.Fatal("expected request data in context")
	}
	if rd.UserID != user.ID {
		t.Fatalf("user id = %s, want %s", rd.UserID, user.ID)
	}
	if rd.Role != string(types.RoleCoach) {
		t.Fatalf("role = %q, want %q", rd.Role, types.RoleCoach)
	}
}

func TestTokenRejectsGarbage(t *testing.T) {
	svc := newTokenService(t)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.SetContextFromToken(context.Background(), tok); err == nil {
			t.Fatalf("token %q: expected error", tok)
		} else if apperr.KindOf(err) != apperr.KindNotAuthorized {
			t.Fatalf("token %q: kind = %s, want %s", tok, apperr.KindOf(err), apperr.KindNotAuthorized)
		}
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	svc := newTokenService(t)
	user := &types.User{ID: uuid.New(), Role: types.RoleClient}
	token, err := svc.mintToken(user)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	svc.jwtSecret = []byte("a-different-secret")
	if _, err := svc.SetContextFromToken(context.Background(), token); err == nil {
		t.Fatal("expected signature mismatch error")
	}
}
