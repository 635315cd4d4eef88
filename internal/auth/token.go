package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: dc_{kind}_{secret}
// Example: dc_a_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
//
// Tokens are opaque: the server stores only a SHA-256 of the token in Redis,
// keyed by kind, so a database or cache dump never exposes usable credentials.
const (
	// TokenSecretLen is the secret length in hex characters (32 random bytes).
	TokenSecretLen = 64
)

// Token kinds.
const (
	KindAccess  = "a"
	KindRefresh = "r"
)

var (
	// ErrInvalidTokenFormat indicates the bearer token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^dc_(a|r)_([a-f0-9]{64})$`)
)

// GeneratedToken contains a newly minted bearer token and its storage hash.
type GeneratedToken struct {
	Plaintext string // Full token (returned to the client once)
	Hash      string // SHA-256 derived lookup key for Redis
	Kind      string // "a" or "r"
}

// GenerateToken creates a new opaque bearer token of the given kind.
func GenerateToken(kind string) (*GeneratedToken, error) {
	if kind != KindAccess && kind != KindRefresh {
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)

	plaintext := fmt.Sprintf("dc_%s_%s", kind, secret)

	return &GeneratedToken{
		Plaintext: plaintext,
		Hash:      QuickHash(plaintext),
		Kind:      kind,
	}, nil
}

// ParsedToken contains the parsed parts of a bearer token.
type ParsedToken struct {
	Kind   string
	Secret string
}

// ParseToken extracts the components from a plaintext bearer token.
// Returns an error if the format is invalid.
func ParseToken(token string) (*ParsedToken, error) {
	matches := tokenFormatRegex.FindStringSubmatch(token)
	if matches == nil {
		return nil, ErrInvalidTokenFormat
	}

	return &ParsedToken{
		Kind:   matches[1],
		Secret: matches[2],
	}, nil
}

// ValidateTokenFormat checks if the token matches the expected format.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
