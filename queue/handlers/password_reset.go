package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/crypto"
	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/queue"
)

// ResetMailer is the slice of the mailer this handler needs.
type ResetMailer interface {
	SendPasswordResetEmail(ctx context.Context, email, link string) error
}

// PasswordResetHandler handles password reset requests
type PasswordResetHandler struct {
	dbAuth         db.DbAuth
	configProvider *config.Provider
	mailer         ResetMailer
	logger         *slog.Logger
}

// NewPasswordResetHandler creates a new PasswordResetHandler
func NewPasswordResetHandler(dbAuth db.DbAuth, provider *config.Provider, mailer ResetMailer, logger *slog.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{
		dbAuth:         dbAuth,
		configProvider: provider,
		mailer:         mailer,
		logger:         logger,
	}
}

// Handle implements the JobHandler interface for password reset requests.
// Unknown addresses complete silently; the endpoint already answered with a
// generic success and nothing here may reveal whether the account exists.
func (h *PasswordResetHandler) Handle(ctx context.Context, job db.Job) error {
	cfg := h.configProvider.Get()

	var payload queue.PayloadPasswordReset
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse password reset payload: %w", err)
	}

	user, err := h.dbAuth.GetUserByEmail(payload.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		h.logger.Info("password reset requested for unknown email, skipping")
		return nil
	}

	token, err := crypto.NewPasswordResetToken(
		user.ID,
		user.Email,
		[]byte(cfg.Jwt.PasswordResetSecret),
		cfg.Jwt.PasswordResetDuration.Duration,
	)
	if err != nil {
		return fmt.Errorf("failed to create password reset token: %w", err)
	}

	link := cfg.Frontend.URL(cfg.Frontend.PasswordResetPath, url.Values{"token": {token}})

	if err := h.mailer.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}
