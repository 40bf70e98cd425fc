package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/db"
)

// KeepaliveHandler pings the service's own public base URL. Its completed
// rows are the heartbeat proving the claim-execute-complete loop and the
// HTTP listener both work end to end.
type KeepaliveHandler struct {
	provider *config.Provider
	client   *http.Client
	logger   *slog.Logger
}

func NewKeepaliveHandler(provider *config.Provider, logger *slog.Logger) *KeepaliveHandler {
	return &KeepaliveHandler{
		provider: provider,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

func (h *KeepaliveHandler) Handle(ctx context.Context, job db.Job) error {
	baseURL := h.provider.Get().Server.BaseURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("keepalive request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		// Logged, not returned: a failed ping marking the recurrent job
		// failed would stop the heartbeat chain it exists to prove.
		h.logger.Error("keepalive self-ping failed", "job_id", job.ID, "url", baseURL, "err", err)
		return nil
	}
	defer resp.Body.Close()

	h.logger.Debug("queue keepalive", "job_id", job.ID, "status", resp.StatusCode)
	return nil
}
