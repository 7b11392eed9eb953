package session

import (
	"context"
	"time"

	"github.com/onetodo/auth-api/internal/domain"
	"github.com/onetodo/auth-api/internal/pkg/id"
	pkgtoken "github.com/onetodo/auth-api/internal/pkg/token"
)

type issuerSessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
}

// Issuer is the concrete session provider: it persists a session record and
// signs a bearer token for it.
type Issuer struct {
	sessions   issuerSessionStore
	signer     jwtSigner
	refreshDur time.Duration
}

func NewIssuer(sessions issuerSessionStore, signer jwtSigner, refreshDur time.Duration) *Issuer {
	return &Issuer{sessions: sessions, signer: signer, refreshDur: refreshDur}
}

func (i *Issuer) Issue(ctx context.Context, u *domain.User) (*IssuedSession, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(i.refreshDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := i.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := i.signer.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &IssuedSession{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}
