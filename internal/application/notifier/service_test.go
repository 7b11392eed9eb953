package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, htmlBody string) error {
	return m.Called(to, subject, htmlBody).Error(0)
}

func TestSendVerificationEmail_LinkAndSubject(t *testing.T) {
	mm := &mockMailer{}
	var gotBody string
	mm.On("SendEmail", "alice@example.com", "Welcome to oneTodo! Confirm your email", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { gotBody = args.String(2) }).
		Return(nil)

	err := NewService(mm, "https://app.example.com").SendVerificationEmail("alice@example.com", "tok-1")

	require.NoError(t, err)
	assert.Contains(t, gotBody, "https://app.example.com/auth/new-verification?token=tok-1")
	mm.AssertExpectations(t)
}

func TestSendPasswordResetEmail_LinkAndSubject(t *testing.T) {
	mm := &mockMailer{}
	var gotBody string
	mm.On("SendEmail", "alice@example.com", "Welcome to oneTodo! Reset your password", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { gotBody = args.String(2) }).
		Return(nil)

	err := NewService(mm, "https://app.example.com").SendPasswordResetEmail("alice@example.com", "tok-2")

	require.NoError(t, err)
	assert.Contains(t, gotBody, "https://app.example.com/auth/reset-password?token=tok-2")
}

func TestSendTwoFactorCode_CodeInBody(t *testing.T) {
	mm := &mockMailer{}
	var gotBody string
	mm.On("SendEmail", "alice@example.com", "Welcome to oneTodo! Your two-factor code", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { gotBody = args.String(2) }).
		Return(nil)

	err := NewService(mm, "https://app.example.com").SendTwoFactorCode("alice@example.com", "123456")

	require.NoError(t, err)
	assert.Contains(t, gotBody, "123456")
	assert.NotContains(t, gotBody, "href")
}
