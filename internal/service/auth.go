// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/docchat/docchat/internal/auth"
	"github.com/docchat/docchat/internal/cache"
	"github.com/docchat/docchat/internal/email"
	"github.com/docchat/docchat/internal/model"
	"github.com/docchat/docchat/internal/repository"
)

// Auth service errors.
var (
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrWeakPassword        = errors.New("password must be at least 8 characters")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrInvalidOTP          = errors.New("invalid or expired verification code")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

const minPasswordLength = 8

// dummyHash is verified against when login hits an unknown email, so the
// response time does not reveal whether the account exists.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AuthService handles registration, login and credential recovery.
type AuthService struct {
	repo            *repository.Repository
	cache           *cache.Cache
	mailer          email.Sender
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	logger          *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.Repository, c *cache.Cache, mailer email.Sender, accessTTL, refreshTTL time.Duration, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		repo:            repo,
		cache:           c,
		mailer:          mailer,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		logger:          logger,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates a new account and sends a verification code.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        emailAddr,
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendVerificationCode(ctx, emailAddr)

	return user, nil
}

// sendVerificationCode generates, stores and emails an OTP. Delivery
// failures are logged; the caller's operation still succeeds and the
// code can be re-requested.
func (s *AuthService) sendVerificationCode(ctx context.Context, emailAddr string) {
	code, err := auth.GenerateOTP()
	if err != nil {
		s.logger.Error("failed to generate verification code", "error", err)
		return
	}
	if err := s.cache.StoreOTP(ctx, emailAddr, code); err != nil {
		s.logger.Error("failed to store verification code", "error", err)
		return
	}
	if err := s.mailer.SendOTP(ctx, emailAddr, code); err != nil {
		s.logger.Error("failed to send verification code", "email", emailAddr, "error", err)
	}
}

// ResendVerification issues a fresh verification code for an unverified account.
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Do not reveal whether the account exists.
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user.EmailVerified {
		return nil
	}

	s.sendVerificationCode(ctx, emailAddr)
	return nil
}

// VerifyEmail confirms an account with the emailed one-time code.
func (s *AuthService) VerifyEmail(ctx context.Context, emailAddr, code string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	ok, err := s.cache.ConsumeOTP(ctx, emailAddr, code)
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		return ErrInvalidOTP
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.repo.MarkEmailVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*TokenPair, *model.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn comparable time so unknown emails are not distinguishable.
			_, _ = auth.VerifyPassword(password, dummyHash)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh exchanges a refresh token for a fresh token pair.
// Refresh tokens are single use.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	parsed, err := auth.ParseToken(refreshToken)
	if err != nil || parsed.Kind != auth.KindRefresh {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := s.cache.ConsumeRefreshToken(ctx, auth.QuickHash(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if userID == "" {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented access token.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if !auth.ValidateTokenFormat(accessToken) {
		return nil
	}
	return s.cache.RevokeAccessToken(ctx, auth.QuickHash(accessToken))
}

// issueTokens mints an access and refresh token and stores their hashes.
func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := auth.GenerateToken(auth.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := auth.GenerateToken(auth.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	authCtx := &model.AuthContext{
		UserID:        user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
	}

	if err := s.cache.StoreAccessToken(ctx, access.Hash, authCtx, s.accessTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}
	if err := s.cache.StoreRefreshToken(ctx, refresh.Hash, user.ID, s.refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access.Plaintext,
		RefreshToken: refresh.Plaintext,
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

// RequestPasswordReset emails a reset token if the account exists.
// Always succeeds from the caller's perspective.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	if _, err := s.repo.GetUserByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	// Only the argon2 hash is stored, so a cache dump cannot be replayed.
	hash, err := auth.HashPassword(token)
	if err != nil {
		return fmt.Errorf("failed to hash reset token: %w", err)
	}
	if err := s.cache.StoreResetTokenHash(ctx, emailAddr, hash); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, emailAddr, token); err != nil {
		s.logger.Error("failed to send reset token", "email", emailAddr, "error", err)
	}
	return nil
}

// ResetPassword sets a new password given a valid reset token.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, token, newPassword string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	storedHash, err := s.cache.GetResetTokenHash(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("failed to read reset token: %w", err)
	}
	if storedHash == "" {
		return ErrInvalidResetToken
	}

	ok, err := auth.VerifyPassword(token, storedHash)
	if err != nil || !ok {
		return ErrInvalidResetToken
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.cache.DeleteResetToken(ctx, emailAddr); err != nil {
		s.logger.Warn("failed to delete used reset token", "error", err)
	}
	return nil
}

// Me returns the account behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}
