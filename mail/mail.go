package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/db"
)

// Mailer sends the transactional emails of the account flows over SMTP.
type Mailer struct {
	cfg    config.Smtp
	logger *slog.Logger
}

// New creates a new Mailer instance from the smtp config section.
func New(cfg config.Smtp, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) newMail() *mailyak.MailYak {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	mail := mailyak.New(addr, smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host))
	mail.From(m.cfg.FromAddress)
	mail.FromName(m.cfg.FromName)
	if m.cfg.LocalName != "" {
		mail.LocalName(m.cfg.LocalName)
	}
	return mail
}

// send delivers the message in a goroutine so the caller's context deadline
// is honored even though net/smtp has no context support.
func (m *Mailer) send(ctx context.Context, mail *mailyak.MailYak) error {
	if !m.cfg.Enabled {
		m.logger.Info("smtp disabled, dropping email")
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// SendOtpEmail delivers the 6-digit code. The subject depends on the OTP
// kind: a fresh signup reads differently from a second-factor check on an
// existing account.
func (m *Mailer) SendOtpEmail(ctx context.Context, email, code, kind string) error {
	mail := m.newMail()
	mail.To(email)

	switch kind {
	case db.OtpKindGoogleTwoFactor:
		mail.Subject("Confirm your sign-in")
	default:
		mail.Subject("Verify your email address")
	}

	mail.HTML().Set(fmt.Sprintf(`
		<h1>Your verification code</h1>
		<p>Enter the following code to continue:</p>
		<p style="font-size:2em;letter-spacing:0.3em"><strong>%s</strong></p>
		<p>The code expires in 10 minutes. If you did not request it, you can ignore this email.</p>
	`, html.EscapeString(code)))
	mail.Plain().Set(fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	m.logger.Info("sent otp email", "email", email, "kind", kind)
	return nil
}

// SendPasswordResetEmail delivers the reset link carrying the reset token.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, link string) error {
	mail := m.newMail()
	mail.To(email)
	mail.Subject("Reset your password")

	mail.HTML().Set(fmt.Sprintf(`
		<h1>Password reset</h1>
		<p>Click the link below to choose a new password:</p>
		<p><a href="%s">Reset password</a></p>
		<p>The link expires in 15 minutes. If you did not request a reset, you can ignore this email.</p>
	`, html.EscapeString(link)))
	mail.Plain().Set(fmt.Sprintf("Open the following link to choose a new password: %s", link))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	m.logger.Info("sent password reset email", "email", email)
	return nil
}
