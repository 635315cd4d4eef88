package auth

import (
	"strings"
	"testing"
)

func TestGenerateToken_Access(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(KindAccess)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// Check plaintext format
	if !strings.HasPrefix(token.Plaintext, "dc_a_") {
		t.Errorf("Token should start with dc_a_, got: %s", token.Plaintext)
	}

	// Secret is 64 hex chars after the prefix
	secret := strings.TrimPrefix(token.Plaintext, "dc_a_")
	if len(secret) != TokenSecretLen {
		t.Errorf("Secret should be %d chars, got: %d", TokenSecretLen, len(secret))
	}

	// Hash is derived, never empty and never the plaintext
	if token.Hash == "" {
		t.Error("Hash should not be empty")
	}
	if token.Hash == token.Plaintext {
		t.Error("Hash should not equal plaintext")
	}
	if token.Hash != QuickHash(token.Plaintext) {
		t.Error("Hash should be QuickHash of the plaintext")
	}
}

func TestGenerateToken_Refresh(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(KindRefresh)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if !strings.HasPrefix(token.Plaintext, "dc_r_") {
		t.Errorf("Token should start with dc_r_, got: %s", token.Plaintext)
	}
	if token.Kind != KindRefresh {
		t.Errorf("Kind = %s, want %s", token.Kind, KindRefresh)
	}
}

func TestGenerateToken_UnknownKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kind string
	}{
		{"empty kind", ""},
		{"full word", "access"},
		{"uppercase", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := GenerateToken(tt.kind); err == nil {
				t.Errorf("GenerateToken(%q) should fail", tt.kind)
			}
		})
	}
}

func TestGenerateToken_UniqueSecrets(t *testing.T) {
	t.Parallel()

	const numTokens = 100
	secrets := make(map[string]bool, numTokens)

	for i := 0; i < numTokens; i++ {
		token, err := GenerateToken(KindAccess)
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}

		if secrets[token.Plaintext] {
			t.Errorf("Duplicate token found at iteration %d", i)
		}
		secrets[token.Plaintext] = true
	}

	if len(secrets) != numTokens {
		t.Errorf("Expected %d unique tokens, got %d", numTokens, len(secrets))
	}
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	validSecret := strings.Repeat("4f8d2e1b", 8)

	tests := []struct {
		name     string
		token    string
		wantKind string
		wantErr  error
	}{
		{
			name:     "valid access token",
			token:    "dc_a_" + validSecret,
			wantKind: KindAccess,
			wantErr:  nil,
		},
		{
			name:     "valid refresh token",
			token:    "dc_r_" + validSecret,
			wantKind: KindRefresh,
			wantErr:  nil,
		},
		{
			name:    "wrong prefix",
			token:   "pk_a_" + validSecret,
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "unknown kind",
			token:   "dc_x_" + validSecret,
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "short secret",
			token:   "dc_a_4f8d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "long secret",
			token:   "dc_a_" + validSecret + "ff",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "uppercase hex",
			token:   "dc_a_" + strings.ToUpper(validSecret),
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "empty string",
			token:   "",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "just invalid",
			token:   "invalid",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "dc_a_ only",
			token:   "dc_a_",
			wantErr: ErrInvalidTokenFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseToken(tt.token)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("ParseToken(%q) error = %v, want %v", tt.token, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseToken(%q) unexpected error: %v", tt.token, err)
			}

			if parsed.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", parsed.Kind, tt.wantKind)
			}

			if parsed.Secret != validSecret {
				t.Errorf("Secret = %s, want %s", parsed.Secret, validSecret)
			}
		})
	}
}

func TestValidateTokenFormat(t *testing.T) {
	t.Parallel()

	validSecret := strings.Repeat("0123cdef", 8)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid access token", "dc_a_" + validSecret, true},
		{"valid refresh token", "dc_r_" + validSecret, true},
		{"not a token", "not-a-token", false},
		{"wrong prefix", "pk_a_" + validSecret, false},
		{"empty", "", false},
		{"trailing whitespace", "dc_a_" + validSecret + " ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ValidateTokenFormat(tt.token)
			if got != tt.want {
				t.Errorf("ValidateTokenFormat(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}
