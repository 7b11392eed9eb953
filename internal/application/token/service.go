package token

import (
	"context"
	"fmt"
	"time"

	"github.com/onetodo/auth-api/internal/domain"
	pkgtoken "github.com/onetodo/auth-api/internal/pkg/token"
)

// All three token kinds share the same fixed TTL.
const tokenTTL = time.Hour

type tokenStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.VerificationToken, error)
	Put(ctx context.Context, t *domain.VerificationToken) error
	Delete(ctx context.Context, email string) error
}

// Issuer generates and rotates single-use tokens. Issuing always replaces the
// owner's existing token for that kind, keeping at most one live token per
// (kind, email).
type Issuer interface {
	Issue(ctx context.Context, kind domain.TokenKind, email string) (*domain.VerificationToken, error)
}

type issuer struct {
	stores map[domain.TokenKind]tokenStore
}

type IssuerDeps struct {
	VerificationTokens  tokenStore
	PasswordResetTokens tokenStore
	TwoFactorTokens     tokenStore
}

func NewIssuer(deps IssuerDeps) Issuer {
	return &issuer{
		stores: map[domain.TokenKind]tokenStore{
			domain.TokenKindVerification:  deps.VerificationTokens,
			domain.TokenKindPasswordReset: deps.PasswordResetTokens,
			domain.TokenKindTwoFactor:     deps.TwoFactorTokens,
		},
	}
}

func (s *issuer) Issue(ctx context.Context, kind domain.TokenKind, email string) (*domain.VerificationToken, error) {
	store, ok := s.stores[kind]
	if !ok {
		return nil, fmt.Errorf("unknown token kind %q: %w", kind, domain.ErrBadRequest)
	}

	// Rotation discards any existing token unconditionally. Expiry is not
	// checked here; the consume path is the authority on expiry.
	if existing, err := store.GetByEmail(ctx, email); err == nil && existing != nil {
		if err := store.Delete(ctx, email); err != nil {
			return nil, err
		}
	}

	value, err := newValue(kind)
	if err != nil {
		return nil, err
	}
	t := &domain.VerificationToken{
		Email:     email,
		Token:     value,
		ExpiresAt: time.Now().Add(tokenTTL).Unix(),
	}
	if err := store.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// newValue picks the value format per kind: a human-typable 6-digit code for
// the two-factor kind, a high-entropy opaque string for the rest.
func newValue(kind domain.TokenKind) (string, error) {
	if kind == domain.TokenKindTwoFactor {
		return pkgtoken.NewOTP()
	}
	return pkgtoken.NewOpaque(), nil
}
