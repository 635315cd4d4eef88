package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// OTPLength is the number of digits in an email verification code.
const OTPLength = 6

// GenerateOTP returns a random 6-digit one-time code for email verification.
func GenerateOTP() (string, error) {
	// 100000..999999, never leading-zero ambiguous
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateResetToken returns a URL-safe random token for password resets.
// Callers store only an Argon2id hash of it.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
