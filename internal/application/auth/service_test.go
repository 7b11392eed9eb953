package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onetodo/auth-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	args := m.Called(ctx, token)
	if t, _ := args.Get(0).(*domain.VerificationToken); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTokenStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockTokenIssuer struct{ mock.Mock }

func (m *mockTokenIssuer) Issue(ctx context.Context, kind domain.TokenKind, email string) (*domain.VerificationToken, error) {
	args := m.Called(ctx, kind, email)
	if t, _ := args.Get(0).(*domain.VerificationToken); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendPasswordResetEmail(email, token string) error {
	return m.Called(email, token).Error(0)
}

// --- helpers ---

type mocks struct {
	verificationTokens *mockTokenStore
	resetTokens        *mockTokenStore
	users              *mockUserStore
	issuer             *mockTokenIssuer
	notifier           *mockNotifier
}

func newMocks() *mocks {
	return &mocks{
		verificationTokens: &mockTokenStore{},
		resetTokens:        &mockTokenStore{},
		users:              &mockUserStore{},
		issuer:             &mockTokenIssuer{},
		notifier:           &mockNotifier{},
	}
}

func newSvc(m *mocks) Service {
	return NewService(ServiceDeps{
		VerificationTokens:  m.verificationTokens,
		PasswordResetTokens: m.resetTokens,
		UserRepo:            m.users,
		TokenIssuer:         m.issuer,
		Notifier:            m.notifier,
	})
}

func liveToken(email string) *domain.VerificationToken {
	return &domain.VerificationToken{
		Email:     email,
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
}

func owner() *domain.User {
	return &domain.User{UserID: "user-123", Email: "alice@example.com", Role: domain.RoleUser}
}

// --- VerifyEmailToken tests ---

func TestVerifyEmailToken_MarksVerifiedAndOverwritesEmail(t *testing.T) {
	m := newMocks()
	// The token carries a different address than the account: the change flow.
	tok := liveToken("new@example.com")
	m.verificationTokens.On("GetByToken", mock.Anything, "tok-1").Return(tok, nil)
	m.users.On("GetByEmail", mock.Anything, "new@example.com").Return(owner(), nil)
	m.users.On("Update", mock.Anything, "user-123", mock.MatchedBy(func(u map[string]interface{}) bool {
		_, hasVerified := u["email_verified_at"]
		return hasVerified && u["email"] == "new@example.com"
	})).Return(nil)
	m.verificationTokens.On("Delete", mock.Anything, "new@example.com").Return(nil)

	msg, err := newSvc(m).VerifyEmailToken(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, "Your email has been successfully verified.", msg)
	m.verificationTokens.AssertCalled(t, "Delete", mock.Anything, "new@example.com")
}

func TestVerifyEmailToken_UnknownToken(t *testing.T) {
	m := newMocks()
	m.verificationTokens.On("GetByToken", mock.Anything, "bogus").Return(nil, domain.ErrNotFound)

	_, err := newSvc(m).VerifyEmailToken(context.Background(), "bogus")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Contains(t, err.Error(), "invalid token")
}

func TestVerifyEmailToken_ExpiredTokenLeftInPlace(t *testing.T) {
	m := newMocks()
	tok := liveToken("alice@example.com")
	tok.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	m.verificationTokens.On("GetByToken", mock.Anything, "tok-1").Return(tok, nil)

	_, err := newSvc(m).VerifyEmailToken(context.Background(), "tok-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Contains(t, err.Error(), "expired")
	m.verificationTokens.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyEmailToken_OwnerMissing(t *testing.T) {
	m := newMocks()
	m.verificationTokens.On("GetByToken", mock.Anything, "tok-1").Return(liveToken("ghost@example.com"), nil)
	m.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	_, err := newSvc(m).VerifyEmailToken(context.Background(), "tok-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- RequestPasswordReset tests ---

func TestRequestPasswordReset_Success(t *testing.T) {
	m := newMocks()
	m.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(owner(), nil)
	m.issuer.On("Issue", mock.Anything, domain.TokenKindPasswordReset, "alice@example.com").
		Return(liveToken("alice@example.com"), nil)
	m.notifier.On("SendPasswordResetEmail", "alice@example.com", "tok-1").Return(nil)

	msg, err := newSvc(m).RequestPasswordReset(context.Background(), ResetRequest{Email: "alice@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "New confirmation email sent", msg)
	m.notifier.AssertExpectations(t)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	m := newMocks()
	m.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	_, err := newSvc(m).RequestPasswordReset(context.Background(), ResetRequest{Email: "ghost@example.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	m.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestPasswordReset_InvalidEmailShape(t *testing.T) {
	m := newMocks()

	_, err := newSvc(m).RequestPasswordReset(context.Background(), ResetRequest{Email: "not-an-email"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	m.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestRequestPasswordReset_NotifyFailureStillSucceeds(t *testing.T) {
	m := newMocks()
	m.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(owner(), nil)
	m.issuer.On("Issue", mock.Anything, domain.TokenKindPasswordReset, "alice@example.com").
		Return(liveToken("alice@example.com"), nil)
	m.notifier.On("SendPasswordResetEmail", "alice@example.com", "tok-1").Return(errors.New("smtp down"))

	msg, err := newSvc(m).RequestPasswordReset(context.Background(), ResetRequest{Email: "alice@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "New confirmation email sent", msg)
}

// --- VerifyResetToken tests ---

func TestVerifyResetToken_ReturnsOwnerEmailWithoutMutation(t *testing.T) {
	m := newMocks()
	m.resetTokens.On("GetByToken", mock.Anything, "tok-1").Return(liveToken("alice@example.com"), nil)
	m.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(owner(), nil)

	email, err := newSvc(m).VerifyResetToken(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
	m.resetTokens.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyResetToken_Expired(t *testing.T) {
	m := newMocks()
	tok := liveToken("alice@example.com")
	tok.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	m.resetTokens.On("GetByToken", mock.Anything, "tok-1").Return(tok, nil)

	_, err := newSvc(m).VerifyResetToken(context.Background(), "tok-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// --- CompleteReset tests ---

func validReset() CompleteResetRequest {
	return CompleteResetRequest{
		Password:        "N3w$ecretPass",
		ConfirmPassword: "N3w$ecretPass",
		Token:           "tok-1",
	}
}

func TestCompleteReset_SetsNewHashAndMarksVerified(t *testing.T) {
	m := newMocks()
	m.resetTokens.On("GetByToken", mock.Anything, "tok-1").Return(liveToken("alice@example.com"), nil)
	m.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(owner(), nil)

	var gotHash string
	m.users.On("Update", mock.Anything, "user-123", mock.MatchedBy(func(u map[string]interface{}) bool {
		h, ok := u["password_hash"].(string)
		if !ok {
			return false
		}
		gotHash = h
		_, hasVerified := u["email_verified_at"]
		return hasVerified
	})).Return(nil)
	m.resetTokens.On("Delete", mock.Anything, "alice@example.com").Return(nil)

	msg, err := newSvc(m).CompleteReset(context.Background(), validReset())

	require.NoError(t, err)
	assert.Equal(t, "Your password has been updated.", msg)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("N3w$ecretPass")))
	m.resetTokens.AssertCalled(t, "Delete", mock.Anything, "alice@example.com")
}

func TestCompleteReset_MismatchFailsBeforeTokenLookup(t *testing.T) {
	m := newMocks()
	req := validReset()
	req.ConfirmPassword = "S0mething3lse$"

	_, err := newSvc(m).CompleteReset(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	m.resetTokens.AssertNotCalled(t, "GetByToken", mock.Anything, mock.Anything)
}

func TestCompleteReset_WeakPasswordRejected(t *testing.T) {
	m := newMocks()
	req := validReset()
	req.Password = "alllowercase"
	req.ConfirmPassword = "alllowercase"

	_, err := newSvc(m).CompleteReset(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCompleteReset_ExpiredTokenRecheckedAtCompletion(t *testing.T) {
	m := newMocks()
	tok := liveToken("alice@example.com")
	tok.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	m.resetTokens.On("GetByToken", mock.Anything, "tok-1").Return(tok, nil)

	_, err := newSvc(m).CompleteReset(context.Background(), validReset())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
