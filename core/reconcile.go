package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orlanda/accounts/crypto"
	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/queue"
)

// Outcome is the terminal state the reconciliation engine resolves an
// inbound identity to. Every entry point (Google callback, Facebook
// callback, manual registration) ends in exactly one of these.
type Outcome int

const (
	// OutcomeNewViaOtp: no account exists for the email; an OTP has to be
	// consumed before anything is created.
	OutcomeNewViaOtp Outcome = iota
	// OutcomeExistingPasswordChallenge: the email belongs to a
	// password-holding account; the bearer must re-enter that password.
	OutcomeExistingPasswordChallenge
	// OutcomeExistingPasswordlessUpgrade: the email belongs to an account
	// without a password; the bearer may attach one to the same user row.
	OutcomeExistingPasswordlessUpgrade
	// OutcomeDirectSession: the provider is trusted enough to mint a
	// session immediately (Facebook).
	OutcomeDirectSession
	// OutcomeRejected: the profile cannot be reconciled (no usable email).
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNewViaOtp:
		return "new_via_otp"
	case OutcomeExistingPasswordChallenge:
		return "existing_password_challenge"
	case OutcomeExistingPasswordlessUpgrade:
		return "existing_passwordless_upgrade"
	case OutcomeDirectSession:
		return "direct_session"
	default:
		return "rejected"
	}
}

// ReconcileGoogleProfile decides the outcome for a verified Google profile
// against the current account state for its email. Pure lookup-free logic;
// the caller supplies the user row (nil when absent).
//
// A Google login never mints a session directly: new emails go through an
// OTP even though Google already authenticated the person, because the OTP
// step converges with manual registration on one verification endpoint and
// guards a replayed authorization code from silently claiming an email with
// a pending manual registration.
func ReconcileGoogleProfile(existing *db.User) Outcome {
	switch {
	case existing == nil:
		return OutcomeNewViaOtp
	case existing.Password != "":
		return OutcomeExistingPasswordChallenge
	default:
		return OutcomeExistingPasswordlessUpgrade
	}
}

// ReconcileFacebookProfile trusts the provider outright. The asymmetry with
// Google is deliberate and documented, not an oversight to fix here.
func ReconcileFacebookProfile(existing *db.User) Outcome {
	return OutcomeDirectSession
}

var errOtpFlow = errors.New("failed to start otp verification")

// beginOtpFlow issues (or reissues, superseding) the OTP for the email and
// enqueues the notification email. The payload is what the shared
// verification terminus later turns into a creation token.
func (a *App) beginOtpFlow(email, kind string, pending crypto.PendingUser) error {
	cfg := a.Config()

	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("%w: %v", errOtpFlow, err)
	}

	now := time.Now().UTC()
	rec := db.OtpRecord{
		Email:   email,
		Code:    crypto.OtpCode(),
		Kind:    kind,
		Payload: payload,
		Created: now,
		Expires: now.Add(cfg.Otp.TTL.Duration),
	}
	if err := a.DbOtp().IssueOtp(rec); err != nil {
		return fmt.Errorf("%w: %v", errOtpFlow, err)
	}

	jobPayload, err := json.Marshal(queue.PayloadOtpEmail{Email: email})
	if err != nil {
		return fmt.Errorf("%w: %v", errOtpFlow, err)
	}
	err = a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypeOtpEmail,
		Payload: jobPayload,
	})
	// A duplicate pending job is fine: the handler reads the ledger at send
	// time, so the one queued email will carry the fresh code.
	if err != nil && !errors.Is(err, db.ErrConstraintUnique) {
		return fmt.Errorf("%w: %v", errOtpFlow, err)
	}

	a.Logger().Info("otp issued", "kind", kind)
	return nil
}
