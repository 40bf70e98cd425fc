package core

import (
	"encoding/json"
	"net/http"

	"github.com/orlanda/accounts/crypto"
	"github.com/orlanda/accounts/db"
)

// RegisterHandler starts manual account creation.
// Endpoint: POST /auth/register
// Authenticated: No
// Allowed Mimetype: application/json
//
// An email that already has an account is rejected with a conflict before any
// OTP is issued. Otherwise nothing is written to the users table here: the
// request only opens an OTP flow, and the account materializes when the
// creation token minted by OTP verification is exchanged at
// /auth/create-account. The unique index on users.email still backs the
// completion step, since an account can appear between this check and then.
func (a *App) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Name == "" || req.Email == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	existing, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil {
		a.Logger().Error("registration user lookup failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}
	if existing != nil {
		writeJsonError(w, errorEmailConflict)
		return
	}

	pending := crypto.PendingUser{
		Name:  req.Name,
		Email: req.Email,
	}
	if err := a.beginOtpFlow(req.Email, db.OtpKindEmailVerify, pending); err != nil {
		a.Logger().Error("registration otp flow failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	writeJsonOk(w, okOtpSent)
}
