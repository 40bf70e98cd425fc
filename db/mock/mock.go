package mock

import (
	"time"

	"github.com/orlanda/accounts/db"
)

// Compile-time check to ensure Db implements the DbApp interface
var _ db.DbApp = (*Db)(nil)

// Db implements db.DbApp for testing purposes.
// Use function fields to allow overriding behavior in specific tests.
type Db struct {
	// --- Mock DbAuth Methods ---
	GetUserByEmailFunc         func(email string) (*db.User, error)
	GetUserByIdFunc            func(id string) (*db.User, error)
	CreateUserWithPasswordFunc func(user db.User) (*db.User, error)
	CreateUserWithOauth2Func   func(user db.User) (*db.User, error)
	UpdatePasswordFunc         func(userId string, newPassword string) error
	UpgradeToProviderFunc      func(userId, newPassword, provider, providerId, picture string) error

	// --- Mock DbOtp Methods ---
	IssueOtpFunc         func(rec db.OtpRecord) error
	ConsumeOtpFunc       func(email, code string, now time.Time) (*db.OtpRecord, error)
	LatestOtpFunc        func(email string, now time.Time) (*db.OtpRecord, error)
	DeleteExpiredOtpFunc func(now time.Time) (int, error)

	// --- Mock DbQueue Methods ---
	InsertJobFunc              func(job db.Job) error
	ClaimFunc                  func(limit int) ([]*db.Job, error)
	MarkCompletedFunc          func(jobID int64) error
	MarkFailedFunc             func(jobID int64, errMsg string) error
	MarkRecurrentCompletedFunc func(completedJobID int64, newJob db.Job) error
}

// --- Implement DbAuth ---

func (m *Db) GetUserByEmail(email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, nil // Default: Not found
}

func (m *Db) GetUserById(id string) (*db.User, error) {
	if m.GetUserByIdFunc != nil {
		return m.GetUserByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	if m.CreateUserWithPasswordFunc != nil {
		return m.CreateUserWithPasswordFunc(user)
	}
	user.ID = "mock-pw-user-id"
	return &user, nil
}

func (m *Db) CreateUserWithOauth2(user db.User) (*db.User, error) {
	if m.CreateUserWithOauth2Func != nil {
		return m.CreateUserWithOauth2Func(user)
	}
	user.ID = "mock-oauth-user-id"
	return &user, nil
}

func (m *Db) UpdatePassword(userId string, newPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(userId, newPassword)
	}
	return nil
}

func (m *Db) UpgradeToProvider(userId, newPassword, provider, providerId, picture string) error {
	if m.UpgradeToProviderFunc != nil {
		return m.UpgradeToProviderFunc(userId, newPassword, provider, providerId, picture)
	}
	return nil
}

// --- Implement DbOtp ---

func (m *Db) IssueOtp(rec db.OtpRecord) error {
	if m.IssueOtpFunc != nil {
		return m.IssueOtpFunc(rec)
	}
	return nil
}

func (m *Db) ConsumeOtp(email, code string, now time.Time) (*db.OtpRecord, error) {
	if m.ConsumeOtpFunc != nil {
		return m.ConsumeOtpFunc(email, code, now)
	}
	return nil, db.ErrOtpNotFound
}

func (m *Db) LatestOtp(email string, now time.Time) (*db.OtpRecord, error) {
	if m.LatestOtpFunc != nil {
		return m.LatestOtpFunc(email, now)
	}
	return nil, nil
}

func (m *Db) DeleteExpiredOtps(now time.Time) (int, error) {
	if m.DeleteExpiredOtpFunc != nil {
		return m.DeleteExpiredOtpFunc(now)
	}
	return 0, nil
}

// --- Implement DbQueue ---

func (m *Db) InsertJob(job db.Job) error {
	if m.InsertJobFunc != nil {
		return m.InsertJobFunc(job)
	}
	return nil
}

func (m *Db) Claim(limit int) ([]*db.Job, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(limit)
	}
	return []*db.Job{}, nil
}

func (m *Db) MarkCompleted(jobID int64) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(jobID)
	}
	return nil
}

func (m *Db) MarkFailed(jobID int64, errMsg string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(jobID, errMsg)
	}
	return nil
}

func (m *Db) MarkRecurrentCompleted(completedJobID int64, newJob db.Job) error {
	if m.MarkRecurrentCompletedFunc != nil {
		return m.MarkRecurrentCompletedFunc(completedJobID, newJob)
	}
	return nil
}
