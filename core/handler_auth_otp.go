package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/orlanda/accounts/crypto"
	"github.com/orlanda/accounts/db"
)

// OtpVerificationData is the payload of a successful OTP verification: the
// creation token the caller exchanges at /auth/create-account.
type OtpVerificationData struct {
	CreationToken string `json:"creation_token"`
	ExpiresIn     int    `json:"expires_in"`
}

// VerifyOtpHandler is the shared verification terminus for manual
// registration and first-time Google logins.
// Endpoint: POST /verify-otp
// Authenticated: No
// Allowed Mimetype: application/json
//
// Consuming the code deletes it; absent, mismatched and expired codes all
// answer the same way. Both OTP kinds end here and both yield a creation
// token, so the caller continues to password entry regardless of how the
// flow started.
func (a *App) VerifyOtpHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Email == "" || req.Code == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	rec, err := a.DbOtp().ConsumeOtp(req.Email, req.Code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, db.ErrOtpNotFound) {
			writeJsonError(w, errorOtpInvalid)
			return
		}
		a.Logger().Error("otp consumption failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	var pending crypto.PendingUser
	if err := json.Unmarshal(rec.Payload, &pending); err != nil {
		a.Logger().Error("otp payload unreadable", "kind", rec.Kind, "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}
	// The ledger row is authoritative for the address.
	pending.Email = rec.Email

	cfg := a.Config()
	token, err := crypto.NewCreationToken(pending, []byte(cfg.Jwt.CreationSecret), cfg.Jwt.CreationTokenDuration.Duration)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkOtpVerified,
			Message: "Code verified",
		},
		Data: OtpVerificationData{
			CreationToken: token,
			ExpiresIn:     int(cfg.Jwt.CreationTokenDuration.Duration.Seconds()),
		},
	})
}

// ResendOtpHandler reissues the live OTP with a fresh code.
// Endpoint: POST /auth/resend-otp
// Authenticated: No
// Allowed Mimetype: application/json
//
// The new record keeps the kind and payload of the superseded one; the old
// code stops verifying the moment the new one is issued. Without a live
// record there is nothing to resend: the flow has to be restarted.
func (a *App) ResendOtpHandler(w http.ResponseWriter, r *http.Request) {
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

	rec, err := a.DbOtp().LatestOtp(req.Email, time.Now().UTC())
	if err != nil {
		a.Logger().Error("otp lookup failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}
	if rec == nil {
		writeJsonError(w, errorNoPendingOtp)
		return
	}

	var pending crypto.PendingUser
	if err := json.Unmarshal(rec.Payload, &pending); err != nil {
		a.Logger().Error("otp payload unreadable", "kind", rec.Kind, "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	if err := a.beginOtpFlow(rec.Email, rec.Kind, pending); err != nil {
		a.Logger().Error("otp resend failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	writeJsonOk(w, okOtpResent)
}
