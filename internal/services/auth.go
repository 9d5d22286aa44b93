package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nooch/nooch-backend/internal/data/repos"
	types "github.com/nooch/nooch-backend/internal/domain"
	"github.com/nooch/nooch-backend/internal/pkg/apperr"
	"github.com/nooch/nooch-backend/internal/pkg/ctxutil"
	"github.com/nooch/nooch-backend/internal/pkg/dbctx"
	"github.com/nooch/nooch-backend/internal/pkg/envutil"
	"github.com/nooch/nooch-backend/internal/pkg/logger"
)

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     types.UserRole
	// CoachID is required for client signups; it binds the new profile to its
	// coach.
	CoachID      *uuid.UUID
	TargetWeight *float64
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	// Me returns the caller's user row, with the client profile when one
	// exists.
	Me(ctx context.Context, userID uuid.UUID) (*MeResult, error)
}

type MeResult struct {
	User    *types.User          `json:"user"`
	Profile *types.ClientProfile `json:"profile,omitempty"`
}

type authService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	profiles repos.ClientProfileRepo

	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, users repos.UserRepo, profiles repos.ClientProfileRepo) (AuthService, error) {
	secret := strings.TrimSpace(envutil.Str("JWT_SECRET", ""))
	if secret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	return &authService{
		db:        db,
		log:       log.With("service", "AuthService"),
		users:     users,
		profiles:  profiles,
		jwtSecret: []byte(secret),
		tokenTTL:  envutil.Duration("JWT_TTL", 24*time.Hour),
	}, nil
}

func (s *authService) mintToken(user *types.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !tok.Valid {
		return ctx, apperr.NotAuthorized("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, apperr.NotAuthorized("invalid token claims")
	}
	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil || userID == uuid.Nil {
		return ctx, apperr.NotAuthorized("invalid token subject")
	}
	role, _ := claims["role"].(string)
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: userID, Role: role}), nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*MeResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	user, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	out := &MeResult{User: user}
	if user.Role == types.RoleClient {
		profile, err := s.profiles.GetByUserID(dbc, userID)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		out.Profile = profile
	}
	return out, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.InvalidInput("valid email required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.InvalidInput("password must be at least 8 characters")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.InvalidInput("name required")
	}
	if in.Role != types.RoleCoach && in.Role != types.RoleClient {
		return nil, apperr.InvalidInput("role must be COACH or CLIENT")
	}
	if in.Role == types.RoleClient && (in.CoachID == nil || *in.CoachID == uuid.Nil) {
		return nil, apperr.InvalidInput("clients must name their coach")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         in.Role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		exists, err := s.users.EmailExists(dbc, email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.InvalidInput("email already registered")
		}

		if in.Role == types.RoleClient {
			coach, err := s.users.GetByID(dbc, *in.CoachID)
			if err != nil {
				return err
			}
			if coach == nil || coach.Role != types.RoleCoach {
				return apperr.InvalidInput("unknown coach")
			}
		}

		if _, err := s.users.Create(dbc, []*types.User{user}); err != nil {
			return err
		}

		if in.Role == types.RoleClient {
			profile := &types.ClientProfile{
				ID:           uuid.New(),
				UserID:       user.ID,
				CoachID:      *in.CoachID,
				TargetWeight: in.TargetWeight,
			}
			if _, err := s.profiles.Create(dbc, []*types.ClientProfile{profile}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.mintToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.InvalidInput("email and password required")
	}

	user, err := s.users.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotAuthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.NotAuthorized("invalid credentials")
	}

	token, err := s.mintToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
