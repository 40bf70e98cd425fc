package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/queue"
)

// OtpMailer is the slice of the mailer this handler needs.
type OtpMailer interface {
	SendOtpEmail(ctx context.Context, email, code, kind string) error
}

// OtpEmailHandler delivers the one-time code for a pending verification.
type OtpEmailHandler struct {
	dbOtp  db.DbOtp
	mailer OtpMailer
	logger *slog.Logger
}

// NewOtpEmailHandler creates a new OtpEmailHandler
func NewOtpEmailHandler(dbOtp db.DbOtp, mailer OtpMailer, logger *slog.Logger) *OtpEmailHandler {
	return &OtpEmailHandler{
		dbOtp:  dbOtp,
		mailer: mailer,
		logger: logger,
	}
}

// Handle implements the JobHandler interface for OTP emails. The payload
// only names the address; the code is read from the ledger at send time, so
// when a resend superseded the original code the email carries the live one.
func (h *OtpEmailHandler) Handle(ctx context.Context, job db.Job) error {
	var payload queue.PayloadOtpEmail
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse otp email payload: %w", err)
	}

	rec, err := h.dbOtp.LatestOtp(payload.Email, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to load otp for email: %w", err)
	}
	if rec == nil {
		// Consumed or expired between enqueue and send. Nothing to do.
		h.logger.Info("no live otp at send time, skipping", "email", payload.Email)
		return nil
	}

	if err := h.mailer.SendOtpEmail(ctx, rec.Email, rec.Code, rec.Kind); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	return nil
}
