package db

import (
	"errors"
	"time"
)

var (
	// ErrConstraintUnique is returned when an insert violates a uniqueness
	// constraint (duplicate email, duplicate queued job in the same bucket).
	ErrConstraintUnique = errors.New("unique constraint violation")
	// ErrMissingFields is returned when a record lacks required fields
	ErrMissingFields = errors.New("missing required fields")
	// ErrOtpNotFound is returned when no live OTP matches (absent, wrong
	// code, or past TTL - the caller cannot tell which).
	ErrOtpNotFound = errors.New("otp not found")
)

// DbAuth is the credential store: one durable identity per email.
type DbAuth interface {
	// GetUserByEmail returns nil, nil when no user exists for the email.
	GetUserByEmail(email string) (*User, error)
	// GetUserById returns nil, nil when no user exists for the id.
	GetUserById(id string) (*User, error)
	// CreateUserWithPassword inserts a new user. A second user with the
	// same email fails with ErrConstraintUnique; uniqueness is enforced by
	// the store, not by application-level locking.
	CreateUserWithPassword(user User) (*User, error)
	// CreateUserWithOauth2 inserts the user only if the email is absent; an
	// existing row is returned untouched. Atomic conditional insert, so two
	// concurrent first-time logins converge on one row.
	CreateUserWithOauth2(user User) (*User, error)
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(userId string, newPassword string) error
	// UpgradeToProvider attaches a password to an existing password-less
	// account and overwrites provider identity and picture when non-empty.
	UpgradeToProvider(userId, newPassword, provider, providerId, picture string) error
}

// DbOtp is the OTP ledger: short-lived records binding an email to a
// one-time code and the payload needed to finish the pending action.
type DbOtp interface {
	// IssueOtp deletes any existing records for the email, then inserts the
	// record. At most one live record per email.
	IssueOtp(rec OtpRecord) error
	// ConsumeOtp looks up by exact (email, code), deletes the record and
	// returns it. Absent, mismatched and expired records all fail with
	// ErrOtpNotFound; expiry is enforced here, independent of any sweep.
	ConsumeOtp(email, code string, now time.Time) (*OtpRecord, error)
	// LatestOtp returns the live record for the email, nil if none.
	LatestOtp(email string, now time.Time) (*OtpRecord, error)
	// DeleteExpiredOtps removes records past their TTL, returns the count.
	DeleteExpiredOtps(now time.Time) (int, error)
}

// DbQueue is the durable job queue used for email dispatch and the
// recurring maintenance jobs.
type DbQueue interface {
	// InsertJob adds a job. Duplicate (job_type, payload) pairs fail with
	// ErrConstraintUnique.
	InsertJob(job Job) error
	// Claim locks and returns up to limit due jobs, marked 'processing'.
	Claim(limit int) ([]*Job, error)
	MarkCompleted(jobID int64) error
	MarkFailed(jobID int64, errMsg string) error
	// MarkRecurrentCompleted completes a recurrent job and inserts its next
	// occurrence in one transaction.
	MarkRecurrentCompleted(completedJobID int64, newJob Job) error
}

// DbApp combines the DB roles the application requires. The concrete
// implementation (*zombiezen.Db) must satisfy this interface.
type DbApp interface {
	DbAuth
	DbOtp
	DbQueue
}
