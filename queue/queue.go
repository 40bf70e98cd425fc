package queue

import "time"

// Job types
const (
	JobTypeOtpEmail      = "job_type_otp_email"
	JobTypePasswordReset = "job_type_password_reset"
	JobTypeOtpSweep      = "job_type_otp_sweep"
	JobTypeKeepalive     = "job_type_keepalive"
)

// Job statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// PayloadOtpEmail identifies which address to notify. The handler re-reads
// the live OTP row at send time, so a superseding code issued between
// enqueue and send wins and the stale job emails nothing wrong.
type PayloadOtpEmail struct {
	Email string `json:"email"`
}

// PayloadPasswordReset carries the target address plus the time bucket the
// request fell into. The bucket makes the payload identical for all requests
// within one cooldown window, so the pending-job unique index deduplicates
// them: one reset email per address per window.
type PayloadPasswordReset struct {
	Email          string `json:"email"`
	CooldownBucket int    `json:"cooldown_bucket"`
}

// CoolDownBucket returns the number of complete duration periods between the
// Unix epoch and t. All times within the same window map to the same bucket,
// which is what makes it usable as a dedup key.
// Panics if duration is not positive.
func CoolDownBucket(duration time.Duration, t time.Time) int {
	if duration <= 0 {
		panic("duration must be positive")
	}

	return int(t.Unix() / int64(duration.Seconds()))
}
