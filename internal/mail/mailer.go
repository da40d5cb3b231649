// Package mail delivers transactional emails for account flows.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pro-power/polishr-sub001/internal/config"
	"github.com/pro-power/polishr-sub001/internal/middleware"

	"gopkg.in/gomail.v2"
)

// Mailer sends account lifecycle emails. Token values travel only inside
// the mailed links; they are never logged.
type Mailer interface {
	SendVerification(ctx context.Context, to string, token string) error
	SendPasswordReset(ctx context.Context, to string, token string) error
}

// SMTPMailer delivers via SMTP using gomail. When the SMTP host is not
// configured it degrades to logging that an email would have been sent,
// which keeps development and test environments working without a relay.
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	baseURL  string
	logger   *slog.Logger
	send     func(m *gomail.Message) error
}

// NewSMTPMailer returns a Mailer configured from cfg.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	m := &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		baseURL:  cfg.BaseURL,
		logger:   middleware.Logger,
	}
	m.send = func(msg *gomail.Message) error {
		d := gomail.NewDialer(m.host, m.port, m.user, m.password)
		return d.DialAndSend(msg)
	}
	return m
}

func (m *SMTPMailer) configured() bool {
	return m.host != "" && m.from != ""
}

// SendVerification emails a verification link to the address.
func (m *SMTPMailer) SendVerification(ctx context.Context, to string, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, token)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Verify your email</h2>
    <p>Welcome to Polishr. Click the button below to verify your email address.</p>
    <p style="margin: 24px 0;">
      <a href="%s" style="padding: 12px 20px; background: #6366f1; color: #fff; text-decoration: none; border-radius: 8px; font-weight: bold;">Verify Email</a>
    </p>
    <p style="font-size: 12px; color: #6b7280;">If you did not create an account, you can ignore this email.</p>
  </div>
</body>
</html>`, link)

	return m.deliver(to, "Verify your Polishr email", body, "verification")
}

// SendPasswordReset emails a reset link to the address. The link expires
// after one hour.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to string, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Reset your password</h2>
    <p>Someone requested a password reset for your Polishr account. The link below is valid for one hour.</p>
    <p style="margin: 24px 0;">
      <a href="%s" style="padding: 12px 20px; background: #6366f1; color: #fff; text-decoration: none; border-radius: 8px; font-weight: bold;">Reset Password</a>
    </p>
    <p style="font-size: 12px; color: #6b7280;">If you did not request this, you can ignore this email and your password will stay unchanged.</p>
  </div>
</body>
</html>`, link)

	return m.deliver(to, "Reset your Polishr password", body, "password_reset")
}

func (m *SMTPMailer) deliver(to, subject, body, kind string) error {
	if !m.configured() {
		m.logger.Warn("smtp not configured, email not sent",
			slog.String("kind", kind),
			slog.String("to", to))
		middleware.EmailsSent.WithLabelValues(kind, "skipped").Inc()
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.send(msg); err != nil {
		middleware.EmailsSent.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("send email: %w", err)
	}

	middleware.EmailsSent.WithLabelValues(kind, "sent").Inc()
	m.logger.Info("email sent", slog.String("kind", kind), slog.String("to", to))
	return nil
}
