package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/onetodo/auth-api/internal/domain"
	"github.com/onetodo/auth-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CompleteResetRequest struct {
	Password        string `json:"password" validate:"required,min=8,complexity"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Token           string `json:"token" validate:"required"`
}

type tokenStore interface {
	GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	Delete(ctx context.Context, email string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type tokenIssuer interface {
	Issue(ctx context.Context, kind domain.TokenKind, email string) (*domain.VerificationToken, error)
}

type mailNotifier interface {
	SendPasswordResetEmail(email, token string) error
}

// Service owns the token-consumption flows: email verification and the
// two-phase password reset (probe, then mutate).
type Service interface {
	VerifyEmailToken(ctx context.Context, token string) (string, error)
	RequestPasswordReset(ctx context.Context, req ResetRequest) (string, error)
	VerifyResetToken(ctx context.Context, token string) (email string, err error)
	CompleteReset(ctx context.Context, req CompleteResetRequest) (string, error)
}

type service struct {
	verificationTokens tokenStore
	resetTokens        tokenStore
	users              userStore
	tokens             tokenIssuer
	notifier           mailNotifier
}

type ServiceDeps struct {
	VerificationTokens  tokenStore
	PasswordResetTokens tokenStore
	UserRepo            userStore
	TokenIssuer         tokenIssuer
	Notifier            mailNotifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		verificationTokens: deps.VerificationTokens,
		resetTokens:        deps.PasswordResetTokens,
		users:              deps.UserRepo,
		tokens:             deps.TokenIssuer,
		notifier:           deps.Notifier,
	}
}

// VerifyEmailToken consumes an email-verification token: marks the owner
// verified and overwrites the account email with the token's email, which is
// how an email change is confirmed without creating a second account.
func (s *service) VerifyEmailToken(ctx context.Context, token string) (string, error) {
	t, u, err := s.resolve(ctx, s.verificationTokens, token)
	if err != nil {
		return "", err
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{
		"email_verified_at": time.Now().UTC(),
		"email":             t.Email,
	}); err != nil {
		return "", err
	}
	if err := s.verificationTokens.Delete(ctx, t.Email); err != nil {
		return "", err
	}
	return "Your email has been successfully verified.", nil
}

func (s *service) RequestPasswordReset(ctx context.Context, req ResetRequest) (string, error) {
	if err := validate.Struct(&req); err != nil {
		return "", fmt.Errorf("invalid data: %w", domain.ErrBadRequest)
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	t, err := s.tokens.Issue(ctx, domain.TokenKindPasswordReset, u.Email)
	if err != nil {
		return "", err
	}
	if err := s.notifier.SendPasswordResetEmail(t.Email, t.Token); err != nil {
		slog.Warn("failed to send password reset email", "email", t.Email, "err", err)
	}
	return "New confirmation email sent", nil
}

// VerifyResetToken is the non-mutating probe of the two-phase reset: the UI
// shows the reset form only when the token is still valid. CompleteReset
// re-runs the same checks because the token can expire between the two calls.
func (s *service) VerifyResetToken(ctx context.Context, token string) (string, error) {
	t, _, err := s.resolve(ctx, s.resetTokens, token)
	if err != nil {
		return "", err
	}
	return t.Email, nil
}

func (s *service) CompleteReset(ctx context.Context, req CompleteResetRequest) (string, error) {
	// Shape validation (including the confirmation match) happens before any
	// token lookup.
	if err := validate.Struct(&req); err != nil {
		return "", fmt.Errorf("invalid data: %w", domain.ErrBadRequest)
	}
	t, u, err := s.resolve(ctx, s.resetTokens, req.Token)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	// Completing a reset proves control of the mailbox, so it also counts as
	// email verification.
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{
		"password_hash":     string(hash),
		"email_verified_at": time.Now().UTC(),
	}); err != nil {
		return "", err
	}
	if err := s.resetTokens.Delete(ctx, t.Email); err != nil {
		return "", err
	}
	return "Your password has been updated.", nil
}

// resolve runs the shared consumption preamble: lookup by value, expiry
// check, owner lookup. An expired record is left in place; the next issuance
// for the same owner replaces it.
func (s *service) resolve(ctx context.Context, store tokenStore, token string) (*domain.VerificationToken, *domain.User, error) {
	t, err := store.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	if t.ExpiresAt < time.Now().Unix() {
		return nil, nil, fmt.Errorf("token has expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.GetByEmail(ctx, t.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return t, u, nil
}
