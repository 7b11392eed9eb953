package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/onetodo/auth-api/internal/domain"
	pkgtoken "github.com/onetodo/auth-api/internal/pkg/token"
	"github.com/onetodo/auth-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type VerifyOTPRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Code     string `json:"code" validate:"required,len=6"`
}

// LoginStatus is the terminal outcome of one login attempt.
type LoginStatus string

const (
	// StatusAuthenticated means a session was issued.
	StatusAuthenticated LoginStatus = "authenticated"
	// StatusVerificationSent means the account's email is unverified; a fresh
	// verification token was mailed and no session was issued.
	StatusVerificationSent LoginStatus = "verification_sent"
	// StatusTwoFactorRequired means a one-time code was mailed; the caller
	// must re-submit credentials plus the code to VerifyOTP.
	StatusTwoFactorRequired LoginStatus = "two_factor_required"
)

type LoginResult struct {
	Status       LoginStatus
	Message      string
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

// IssuedSession is what the delegated session provider hands back.
type IssuedSession struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

// SessionIssuer is the delegated session provider. The login flow never
// constructs sessions itself; it hands the authenticated user over and maps
// any rejection onto its own outcome contract.
type SessionIssuer interface {
	Issue(ctx context.Context, u *domain.User) (*IssuedSession, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type otpStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.VerificationToken, error)
	Delete(ctx context.Context, email string) error
}

type confirmationStore interface {
	Get(ctx context.Context, userID string) (*domain.TwoFactorConfirmation, error)
	Put(ctx context.Context, c *domain.TwoFactorConfirmation) error
	Delete(ctx context.Context, userID string) error
}

type tokenIssuer interface {
	Issue(ctx context.Context, kind domain.TokenKind, email string) (*domain.VerificationToken, error)
}

type mailNotifier interface {
	SendVerificationEmail(email, token string) error
	SendTwoFactorCode(email, code string) error
}

type sessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResult, error)
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
}

type service struct {
	users         userStore
	otpTokens     otpStore
	confirmations confirmationStore
	tokens        tokenIssuer
	notifier      mailNotifier
	issuer        SessionIssuer
	sessions      sessionStore
	jwtProvider   jwtSigner
	refreshDur    time.Duration
}

type ServiceDeps struct {
	UserRepo         userStore
	TwoFactorTokens  otpStore
	ConfirmationRepo confirmationStore
	TokenIssuer      tokenIssuer
	Notifier         mailNotifier
	SessionIssuer    SessionIssuer
	SessionRepo      sessionStore
	JWTProvider      jwtSigner
	RefreshTokenDur  time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:         deps.UserRepo,
		otpTokens:     deps.TwoFactorTokens,
		confirmations: deps.ConfirmationRepo,
		tokens:        deps.TokenIssuer,
		notifier:      deps.Notifier,
		issuer:        deps.SessionIssuer,
		sessions:      deps.SessionRepo,
		jwtProvider:   deps.JWTProvider,
		refreshDur:    deps.RefreshTokenDur,
	}
}

// Login runs one attempt through the full chain: credential check, then the
// email-verified gate, then the two-factor gate, then session issuance. The
// email gate always comes first, so an unverified account never receives a
// two-factor code.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid data: %w", domain.ErrBadRequest)
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	// An OAuth-only account has no password hash. Same message as unknown
	// email so nothing about account existence leaks.
	if u.PasswordHash == nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if u.EmailVerifiedAt == nil {
		t, err := s.tokens.Issue(ctx, domain.TokenKindVerification, u.Email)
		if err != nil {
			return nil, err
		}
		if err := s.notifier.SendVerificationEmail(u.Email, t.Token); err != nil {
			slog.Warn("failed to send verification email", "email", u.Email, "err", err)
		}
		return &LoginResult{Status: StatusVerificationSent, Message: "Confirmation email sent"}, nil
	}

	if u.TwoFactorEnabled {
		conf, err := s.confirmations.Get(ctx, u.UserID)
		if err != nil || conf == nil {
			t, err := s.tokens.Issue(ctx, domain.TokenKindTwoFactor, u.Email)
			if err != nil {
				return nil, err
			}
			if err := s.notifier.SendTwoFactorCode(u.Email, t.Token); err != nil {
				slog.Warn("failed to send two-factor code", "email", u.Email, "err", err)
			}
			return &LoginResult{Status: StatusTwoFactorRequired, Message: "Two-factor code sent"}, nil
		}
		// The confirmation is a one-shot capability: consume it here so the
		// next login starts a fresh two-factor challenge.
		if err := s.confirmations.Delete(ctx, u.UserID); err != nil {
			return nil, err
		}
	}

	issued, err := s.issuer.Issue(ctx, u)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("session issuance failed: %w", domain.ErrProvider)
	}
	return &LoginResult{
		Status:       StatusAuthenticated,
		Message:      "Logged in",
		Bearer:       issued.Bearer,
		RefreshToken: issued.RefreshToken,
		Session:      issued.Session,
	}, nil
}

// VerifyOTP is the second entry point of a two-factor login. The stored code
// is resolved by owner email, not by value, and compared exactly. On success
// the code is deleted, the confirmation marker is recreated, and the attempt
// re-enters Login to finalize.
func (s *service) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("invalid data: %w", domain.ErrBadRequest)
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	t, err := s.otpTokens.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid code: %w", domain.ErrUnauthorized)
	}
	if t.Token != req.Code {
		return nil, fmt.Errorf("invalid code: %w", domain.ErrUnauthorized)
	}
	if t.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("code has expired: %w", domain.ErrUnauthorized)
	}

	if err := s.otpTokens.Delete(ctx, req.Email); err != nil {
		return nil, err
	}
	// Supersede any confirmation left over from an earlier attempt.
	if err := s.confirmations.Delete(ctx, u.UserID); err != nil {
		return nil, err
	}
	if err := s.confirmations.Put(ctx, &domain.TwoFactorConfirmation{
		UserID:    u.UserID,
		CreatedAt: time.Now().Unix(),
	}); err != nil {
		return nil, err
	}

	return s.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password})
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid or expired refresh token: %w", domain.ErrUnauthorized)
	}
	if sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshDur).Unix()
	if err := s.sessions.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	u, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		return "", "", err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}
