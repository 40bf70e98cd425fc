package db

import (
	"encoding/json"
	"time"
)

// Original signup methods recorded in User.Provider. The provider never
// implies the absence of a password; see User.Password.
const (
	ProviderEmail    = "email"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// User represents one durable identity. Email is the sole cross-provider
// join key; exactly one user per email at all times.
// Timestamps (Created and Updated) use RFC3339 format in UTC timezone.
type User struct {
	ID    string
	Email string
	Name  string
	// Non empty password means password authentication is active.
	// Password is empty for accounts created via an OAuth provider that
	// have not gone through the upgrade flow yet.
	Password string
	Picture  string
	// Provider records the original signup method (email, google, facebook)
	Provider string
	// ProviderID is the external provider's user id, empty for pure-email accounts
	ProviderID string
	Created    time.Time
	Updated    time.Time
}

// OTP kinds. The kind decides which pending action the payload finishes.
const (
	OtpKindEmailVerify     = "emailVerify"
	OtpKindGoogleTwoFactor = "googleTwoFactor"
)

// OtpRecord is a pending verification challenge: a one-time numeric code
// bound to an email plus the opaque payload needed to finish the action.
// Self-destructs after its TTL whether or not consumed.
type OtpRecord struct {
	Email   string
	Code    string
	Kind    string
	Payload json.RawMessage
	Created time.Time
	Expires time.Time
}

// Job represents a job in the processing queue
type Job struct {
	ID           int64           `json:"id"`
	JobType      string          `json:"job_type"`
	Payload      json.RawMessage `json:"payload"`       // Unique payload part
	PayloadExtra json.RawMessage `json:"payload_extra"` // Non-unique payload part
	Status       string          `json:"status"`
	Attempts     int             `json:"attempts"`
	MaxAttempts  int             `json:"max_attempts"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ScheduledFor time.Time       `json:"scheduled_for"`
	LockedAt     time.Time       `json:"locked_at,omitempty"`
	CompletedAt  time.Time       `json:"completed_at,omitempty"`
	LastError    string          `json:"last_error,omitempty"`
	Recurrent    bool            `json:"recurrent"`
	Interval     time.Duration   `json:"interval"`
}
