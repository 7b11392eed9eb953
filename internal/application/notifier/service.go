package notifier

import (
	"fmt"

	"github.com/onetodo/auth-api/internal/infrastructure/smtp"
)

// Routes embedded in the confirmation links, matching the web app's pages.
const (
	verificationRoute = "new-verification"
	resetRoute        = "reset-password"
)

// Service delivers a token to its owner out of band. Implementations build
// the purpose-specific subject and body and hand off to the mail primitive.
type Service interface {
	SendVerificationEmail(email, token string) error
	SendPasswordResetEmail(email, token string) error
	SendTwoFactorCode(email, code string) error
}

type service struct {
	mailer  smtp.Mailer
	baseURL string
}

func NewService(mailer smtp.Mailer, baseURL string) Service {
	return &service{mailer: mailer, baseURL: baseURL}
}

func (s *service) SendVerificationEmail(email, token string) error {
	link := s.confirmLink(verificationRoute, token)
	body := fmt.Sprintf(`Click <a href="%s">here</a> to confirm your email`, link)
	return s.mailer.SendEmail(email, "Welcome to oneTodo! Confirm your email", body)
}

func (s *service) SendPasswordResetEmail(email, token string) error {
	link := s.confirmLink(resetRoute, token)
	body := fmt.Sprintf(`Click <a href="%s">here</a> to reset your password`, link)
	return s.mailer.SendEmail(email, "Welcome to oneTodo! Reset your password", body)
}

// SendTwoFactorCode embeds the code directly in the body; there is no link to
// follow, the user types the code into the pending login form.
func (s *service) SendTwoFactorCode(email, code string) error {
	body := fmt.Sprintf("<p>Your two-factor authentication code is %s</p>", code)
	return s.mailer.SendEmail(email, "Welcome to oneTodo! Your two-factor code", body)
}

func (s *service) confirmLink(route, token string) string {
	return fmt.Sprintf("%s/auth/%s?token=%s", s.baseURL, route, token)
}
