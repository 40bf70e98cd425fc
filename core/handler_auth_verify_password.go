package core

import (
	"encoding/json"
	"net/http"

	"github.com/orlanda/accounts/crypto"
)

// VerifyPasswordHandler completes a password challenge: an existing
// password-holding account reached via an OAuth login has to re-enter its
// password before a session is issued.
// Endpoint: POST /auth/verify-password
// Authenticated: No (the challenge token is the credential)
// Allowed Mimetype: application/json
func (a *App) VerifyPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Token == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	cfg := a.Config()
	userID, _, err := crypto.ParseChallengeToken(req.Token, []byte(cfg.Jwt.ChallengeSecret))
	if err != nil {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	user, err := a.DbAuth().GetUserById(userID)
	if err != nil {
		a.Logger().Error("challenge lookup failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	// A vanished account and a wrong password answer identically.
	if user == nil || user.Password == "" {
		writeJsonError(w, errorInvalidCredentials)
		return
	}
	if !crypto.CheckPassword(req.Password, user.Password) {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	token, _, err := crypto.NewSessionToken(user.ID, []byte(cfg.Jwt.SessionSecret), cfg.Jwt.SessionTokenDuration.Duration)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, token, int(cfg.Jwt.SessionTokenDuration.Duration.Seconds()), user)
}
