// Package mailer is the transactional email side channel. Sends are
// best-effort: callers log failures and continue, they never fail the
// operation that triggered the send.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"daily-spark/internal/config"
	"daily-spark/internal/logger"

	"go.uber.org/zap"
)

// Notifier delivers transactional emails.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}

// NewNotifier returns an SMTP-backed Notifier, or a no-op one when SMTP is
// disabled in config.
func NewNotifier(cfg config.SMTPConfig) Notifier {
	if !cfg.Enabled {
		logger.Get().Info("SMTP disabled, transactional emails will be dropped")
		return &noopNotifier{}
	}
	return &smtpNotifier{cfg: cfg}
}

type smtpNotifier struct {
	cfg config.SMTPConfig
}

func (n *smtpNotifier) SendVerificationEmail(_ context.Context, to, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify?token=%s", n.cfg.BaseURL, token)
	body := fmt.Sprintf("Welcome to Daily Spark!\r\n\r\nVerify your email by opening this link:\r\n%s\r\n", link)
	return n.send(to, "Verify your Daily Spark account", body)
}

func (n *smtpNotifier) SendPasswordResetEmail(_ context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", n.cfg.BaseURL, token)
	body := fmt.Sprintf("A password reset was requested for your account.\r\n\r\nReset it here:\r\n%s\r\n\r\nIf you did not request this, ignore this email.\r\n", link)
	return n.send(to, "Reset your Daily Spark password", body)
}

func (n *smtpNotifier) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	logger.Get().Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

type noopNotifier struct{}

func (noopNotifier) SendVerificationEmail(_ context.Context, to, _ string) error {
	logger.Get().Debug("Dropping verification email", zap.String("to", to))
	return nil
}

func (noopNotifier) SendPasswordResetEmail(_ context.Context, to, _ string) error {
	logger.Get().Debug("Dropping password reset email", zap.String("to", to))
	return nil
}
