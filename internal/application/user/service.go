package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/onetodo/auth-api/internal/domain"
	"github.com/onetodo/auth-api/internal/pkg/id"
	"github.com/onetodo/auth-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type tokenIssuer interface {
	Issue(ctx context.Context, kind domain.TokenKind, email string) (*domain.VerificationToken, error)
}

type mailNotifier interface {
	SendVerificationEmail(email, token string) error
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo     userStore
	tokens   tokenIssuer
	notifier mailNotifier
}

type ServiceDeps struct {
	UserRepo    userStore
	TokenIssuer tokenIssuer
	Notifier    mailNotifier
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo, tokens: deps.TokenIssuer, notifier: deps.Notifier}
}

// Register creates an unverified credential account and mails a verification
// token. The success message is returned to the caller unchanged.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(&req); err != nil {
		return "", fmt.Errorf("invalid data: %w", domain.ErrBadRequest)
	}

	// Duplicate check is case-sensitive, matching the lookup used at login.
	// "A@b.com" and "a@b.com" can coexist; flagged as a gap, not changed here.
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	hashStr := string(hash)
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &hashStr,
		Role:         domain.RoleUser,
		AuthProvider: "credentials",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return "", err
	}

	t, err := s.tokens.Issue(ctx, domain.TokenKindVerification, u.Email)
	if err != nil {
		return "", err
	}
	if err := s.notifier.SendVerificationEmail(u.Email, t.Token); err != nil {
		slog.Warn("failed to send verification email", "email", u.Email, "err", err)
	}
	return "Confirmation email sent", nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}
