package domain

// TokenKind selects one of the three single-use token tables. All kinds share
// the same record shape and rotation mechanics; they differ in value format
// and in the mutation applied when consumed.
type TokenKind string

const (
	TokenKindVerification  TokenKind = "verification"
	TokenKindPasswordReset TokenKind = "password_reset"
	TokenKindTwoFactor     TokenKind = "two_factor"
)

// VerificationToken is a single-use, time-limited token owned by an email
// address. At most one live token exists per (kind, email); issuing a new one
// deletes the previous one first.
// PK: email. Token-value lookups go through the token-index GSI.
// ExpiresAt is a Unix timestamp used as the DynamoDB TTL attribute.
type VerificationToken struct {
	Email     string `json:"email" dynamodbav:"email"`
	Token     string `json:"token" dynamodbav:"token"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}

// TwoFactorConfirmation records that the OTP step was satisfied for the
// current sign-in attempt. It is created right after OTP verification and
// deleted by the login leg that issues the session, so it never outlives a
// single attempt.
// PK: user_id.
type TwoFactorConfirmation struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
}
