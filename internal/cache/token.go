package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docchat/docchat/internal/model"
)

// Redis key prefixes for the token store. Keys hold SHA-256 hashes of the
// opaque bearer tokens, never the tokens themselves.
const (
	accessTokenPrefix  = "auth:access:"
	refreshTokenPrefix = "auth:refresh:"
	otpPrefix          = "otp:"
	resetPrefix        = "reset:"

	// OTPTTL is how long an email verification code stays valid.
	OTPTTL = 5 * time.Minute
	// ResetTokenTTL is how long a password reset token stays valid.
	ResetTokenTTL = 15 * time.Minute
)

// storedAuthContext is the Redis representation of an access token's context.
type storedAuthContext struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// StoreAccessToken saves the auth context under the token hash with a TTL.
func (c *Cache) StoreAccessToken(ctx context.Context, tokenHash string, authCtx *model.AuthContext, ttl time.Duration) error {
	data, err := json.Marshal(storedAuthContext{
		UserID:        authCtx.UserID,
		Email:         authCtx.Email,
		EmailVerified: authCtx.EmailVerified,
	})
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}
	return c.client.Set(ctx, accessTokenPrefix+tokenHash, data, ttl).Err()
}

// GetAccessToken retrieves the auth context for a token hash.
// Returns nil on miss (expired, revoked or never issued).
func (c *Cache) GetAccessToken(ctx context.Context, tokenHash string) (*model.AuthContext, error) {
	data, err := c.client.Get(ctx, accessTokenPrefix+tokenHash).Bytes()
	if err != nil {
		// Miss is not an error
		return nil, nil //nolint:nilerr
	}

	var stored storedAuthContext
	if err := json.Unmarshal(data, &stored); err != nil {
		// Corrupted entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		UserID:        stored.UserID,
		Email:         stored.Email,
		EmailVerified: stored.EmailVerified,
	}, nil
}

// RevokeAccessToken deletes an access token.
func (c *Cache) RevokeAccessToken(ctx context.Context, tokenHash string) error {
	return c.client.Del(ctx, accessTokenPrefix+tokenHash).Err()
}

// StoreRefreshToken maps a refresh token hash to a user ID with a TTL.
func (c *Cache) StoreRefreshToken(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	return c.client.Set(ctx, refreshTokenPrefix+tokenHash, userID, ttl).Err()
}

// ConsumeRefreshToken atomically reads and deletes a refresh token,
// returning the user ID it belonged to. Returns "" on miss. Single use
// prevents replay of stolen refresh tokens.
func (c *Cache) ConsumeRefreshToken(ctx context.Context, tokenHash string) (string, error) {
	userID, err := c.client.GetDel(ctx, refreshTokenPrefix+tokenHash).Result()
	if err != nil {
		return "", nil //nolint:nilerr
	}
	return userID, nil
}

// StoreOTP saves an email verification code for the address.
func (c *Cache) StoreOTP(ctx context.Context, email, code string) error {
	return c.client.Set(ctx, otpPrefix+email, code, OTPTTL).Err()
}

// ConsumeOTP verifies and deletes the code for an address.
// A code is single-use regardless of outcome distribution upstream.
func (c *Cache) ConsumeOTP(ctx context.Context, email, code string) (bool, error) {
	stored, err := c.client.Get(ctx, otpPrefix+email).Result()
	if err != nil {
		return false, nil //nolint:nilerr
	}
	if stored != code {
		return false, nil
	}
	if err := c.client.Del(ctx, otpPrefix+email).Err(); err != nil {
		return false, fmt.Errorf("delete otp: %w", err)
	}
	return true, nil
}

// StoreResetTokenHash saves the Argon2id hash of a password reset token.
func (c *Cache) StoreResetTokenHash(ctx context.Context, email, tokenHash string) error {
	return c.client.Set(ctx, resetPrefix+email, tokenHash, ResetTokenTTL).Err()
}

// GetResetTokenHash retrieves the stored reset token hash for an address.
// Returns "" on miss.
func (c *Cache) GetResetTokenHash(ctx context.Context, email string) (string, error) {
	hash, err := c.client.Get(ctx, resetPrefix+email).Result()
	if err != nil {
		return "", nil //nolint:nilerr
	}
	return hash, nil
}

// DeleteResetToken removes a reset token after successful use.
func (c *Cache) DeleteResetToken(ctx context.Context, email string) error {
	return c.client.Del(ctx, resetPrefix+email).Err()
}
