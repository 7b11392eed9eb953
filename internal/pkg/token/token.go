package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// NewOpaque generates a high-entropy opaque token value for the
// email-verification and password-reset kinds.
func NewOpaque() string {
	return uuid.NewString()
}

// NewOTP generates a 6-digit one-time code, uniformly sampled over
// [100000, 999999]. The reduced entropy is deliberate: the code is meant to be
// typed by a human from an email body.
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// NewRefreshToken generates a cryptographically random 64-character hex token.
func NewRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
