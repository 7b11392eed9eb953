package domain

import "time"

type User struct {
	UserID           string     `json:"id" dynamodbav:"user_id"`
	Name             string     `json:"name" dynamodbav:"name"`
	Email            string     `json:"email" dynamodbav:"email"`
	PasswordHash     *string    `json:"-" dynamodbav:"password_hash"` // nil for OAuth-only accounts
	Role             string     `json:"role" dynamodbav:"role"`
	EmailVerifiedAt  *time.Time `json:"email_verified_at,omitempty" dynamodbav:"email_verified_at"`
	TwoFactorEnabled bool       `json:"two_factor_enabled" dynamodbav:"two_factor_enabled"`
	AuthProvider     string     `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "credentials" | "google" | "github"
	CreatedAt        time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,complexity"`
	Name     string `json:"name" validate:"required,min=2"`
}
