package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/orlanda/accounts/crypto"
	"github.com/orlanda/accounts/db"
	"github.com/orlanda/accounts/db/mock"
	"github.com/orlanda/accounts/queue"
)

func TestRegisterHandlerValidation(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{
			name:        "wrong content type",
			contentType: "text/plain",
			body:        `{"name":"Ada","email":"ada@example.com"}`,
			wantStatus:  http.StatusUnsupportedMediaType,
			wantCode:    CodeErrorInvalidContentType,
		},
		{
			name:        "malformed json",
			contentType: MimeTypeJSON,
			body:        `{"name":`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    CodeErrorInvalidRequest,
		},
		{
			name:        "missing name",
			contentType: MimeTypeJSON,
			body:        `{"email":"ada@example.com"}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    CodeErrorMissingFields,
		},
		{
			name:        "missing email",
			contentType: MimeTypeJSON,
			body:        `{"name":"Ada"}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    CodeErrorMissingFields,
		},
		{
			name:        "invalid email",
			contentType: MimeTypeJSON,
			body:        `{"name":"Ada","email":"not-an-email"}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    CodeErrorInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &mock.Db{})

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rr := httptest.NewRecorder()

			app.RegisterHandler(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tc.wantStatus)
			}
			var resp JsonBasic
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid response body: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("code: got %q, want %q", resp.Code, tc.wantCode)
			}
		})
	}
}

func TestRegisterHandlerIssuesOtpAndQueuesEmail(t *testing.T) {
	var issued *db.OtpRecord
	var queued *db.Job
	mockDb := &mock.Db{
		IssueOtpFunc: func(rec db.OtpRecord) error {
			issued = &rec
			return nil
		},
		InsertJobFunc: func(job db.Job) error {
			queued = &job
			return nil
		},
	}
	app := newTestApp(t, mockDb)

	req := newJsonRequest(http.MethodPost, "/auth/register", `{"name":"Ada","email":"ada@example.com"}`)
	rr := httptest.NewRecorder()
	app.RegisterHandler(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusAccepted, rr.Body.String())
	}

	if issued == nil {
		t.Fatal("no OTP was issued")
	}
	if issued.Email != "ada@example.com" {
		t.Errorf("otp email: got %q", issued.Email)
	}
	if issued.Kind != db.OtpKindEmailVerify {
		t.Errorf("otp kind: got %q, want %q", issued.Kind, db.OtpKindEmailVerify)
	}
	if len(issued.Code) != crypto.OtpCodeLength {
		t.Errorf("otp code %q has wrong length", issued.Code)
	}
	if !issued.Expires.After(issued.Created) {
		t.Error("otp expiry not after creation")
	}

	var pending crypto.PendingUser
	if err := json.Unmarshal(issued.Payload, &pending); err != nil {
		t.Fatalf("otp payload unreadable: %v", err)
	}
	if pending.Name != "Ada" || pending.Email != "ada@example.com" {
		t.Errorf("pending payload mismatch: %+v", pending)
	}

	if queued == nil {
		t.Fatal("no email job was queued")
	}
	if queued.JobType != queue.JobTypeOtpEmail {
		t.Errorf("job type: got %q, want %q", queued.JobType, queue.JobTypeOtpEmail)
	}
}

// Registering an email that already has an account is a conflict. No OTP may
// be issued and no email job queued for the taken address.
func TestRegisterHandlerRejectsExistingEmail(t *testing.T) {
	mockDb := &mock.Db{
		GetUserByEmailFunc: func(email string) (*db.User, error) {
			return &db.User{ID: "u1", Email: email}, nil
		},
		IssueOtpFunc: func(rec db.OtpRecord) error {
			t.Error("no OTP may be issued for a taken email")
			return nil
		},
		InsertJobFunc: func(job db.Job) error {
			t.Error("no email job may be queued for a taken email")
			return nil
		},
	}
	app := newTestApp(t, mockDb)

	req := newJsonRequest(http.MethodPost, "/auth/register", `{"name":"Ada","email":"taken@example.com"}`)
	rr := httptest.NewRecorder()
	app.RegisterHandler(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, http.StatusConflict, rr.Body.String())
	}
	var resp JsonBasic
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Code != CodeErrorEmailConflict {
		t.Errorf("code: got %q, want %q", resp.Code, CodeErrorEmailConflict)
	}
}

func TestRegisterHandlerLookupFailure(t *testing.T) {
	mockDb := &mock.Db{
		GetUserByEmailFunc: func(email string) (*db.User, error) {
			return nil, errors.New("disk error")
		},
	}
	app := newTestApp(t, mockDb)

	req := newJsonRequest(http.MethodPost, "/auth/register", `{"name":"Ada","email":"ada@example.com"}`)
	rr := httptest.NewRecorder()
	app.RegisterHandler(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

// A duplicate pending email job is not an error: the handler reads the live
// code at send time.
func TestRegisterHandlerToleratesDuplicateEmailJob(t *testing.T) {
	mockDb := &mock.Db{
		InsertJobFunc: func(job db.Job) error {
			return db.ErrConstraintUnique
		},
	}
	app := newTestApp(t, mockDb)

	req := newJsonRequest(http.MethodPost, "/auth/register", `{"name":"Ada","email":"ada@example.com"}`)
	rr := httptest.NewRecorder()
	app.RegisterHandler(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusAccepted)
	}
}
