package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/queue"
)

// RequestPasswordResetHandler starts the forgot-password flow.
// Endpoint: POST /auth/forgot-password
// Authenticated: No
// Allowed Mimetype: application/json
//
// The answer is the same generic acceptance whether or not the email has an
// account, and whether or not a reset was already requested in the current
// cooldown window. The queue handler does the lookup and quietly drops
// unknown addresses.
func (a *App) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Email == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	cfg := a.Config()
	payload, err := json.Marshal(queue.PayloadPasswordReset{
		Email:          req.Email,
		CooldownBucket: queue.CoolDownBucket(cfg.RateLimits.PasswordResetCooldown.Duration, time.Now()),
	})
	if err != nil {
		a.Logger().Error("reset payload marshal failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	err = a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypePasswordReset,
		Payload: payload,
	})
	// A duplicate in the same cooldown bucket means an email is already on
	// its way; acknowledging identically keeps the endpoint unenumerable.
	if err != nil && !errors.Is(err, db.ErrConstraintUnique) {
		a.Logger().Error("reset job insert failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	writeJsonOk(w, okPasswordResetRequested)
}
