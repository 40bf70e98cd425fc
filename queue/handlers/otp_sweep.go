package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/orlanda/accounts/db"
)

// OtpSweepHandler removes expired OTP rows. Expiry is enforced on every
// read, so the sweep is hygiene, not correctness.
type OtpSweepHandler struct {
	dbOtp  db.DbOtp
	logger *slog.Logger
}

func NewOtpSweepHandler(dbOtp db.DbOtp, logger *slog.Logger) *OtpSweepHandler {
	return &OtpSweepHandler{dbOtp: dbOtp, logger: logger}
}

func (h *OtpSweepHandler) Handle(ctx context.Context, _ db.Job) error {
	deleted, err := h.dbOtp.DeleteExpiredOtps(time.Now().UTC())
	if err != nil {
		return err
	}
	if deleted > 0 {
		h.logger.Info("swept expired otps", "deleted", deleted)
	}
	return nil
}
