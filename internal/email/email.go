// Package email delivers transactional mail for account flows.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Sender delivers account-related email.
type Sender interface {
	// SendOTP delivers a one-time verification code.
	SendOTP(ctx context.Context, to, code string) error
	// SendPasswordReset delivers a password reset token.
	SendPasswordReset(ctx context.Context, to, token string) error
}

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail over SMTP with STARTTLS.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTP returns a Sender backed by an SMTP server.
func NewSMTP(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendOTP delivers a one-time verification code.
func (s *SMTPSender) SendOTP(ctx context.Context, to, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf(
		"Your verification code is: %s\n\nIt expires in 5 minutes. If you did not request this, ignore this message.\n",
		code)
	return s.send(ctx, to, subject, body)
}

// SendPasswordReset delivers a password reset token.
func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, token string) error {
	subject := "Password reset request"
	body := fmt.Sprintf(
		"Use this token to reset your password: %s\n\nIt expires in 15 minutes. If you did not request a reset, ignore this message.\n",
		token)
	return s.send(ctx, to, subject, body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// LogSender logs mail instead of sending it. Used in development when no
// SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a Sender that only logs.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendOTP logs the verification code.
func (l *LogSender) SendOTP(_ context.Context, to, code string) error {
	l.logger.Info("mail not configured, logging OTP", "to", to, "code", code)
	return nil
}

// SendPasswordReset logs the reset token.
func (l *LogSender) SendPasswordReset(_ context.Context, to, token string) error {
	l.logger.Info("mail not configured, logging reset token", "to", to, "token", token)
	return nil
}
