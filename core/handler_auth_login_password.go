package core

import (
	"encoding/json"
	"net/http"

	"github.com/orlanda/accounts/crypto"
)

// LoginWithPasswordHandler handles password-based authentication (login)
// Endpoint: POST /auth/login
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) LoginWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil {
		a.Logger().Error("login lookup failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	// Unknown email, password-less account and wrong password all produce
	// the identical answer.
	if user == nil || user.Password == "" {
		writeJsonError(w, errorInvalidCredentials)
		return
	}
	if !crypto.CheckPassword(req.Password, user.Password) {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	cfg := a.Config()
	token, _, err := crypto.NewSessionToken(user.ID, []byte(cfg.Jwt.SessionSecret), cfg.Jwt.SessionTokenDuration.Duration)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, token, int(cfg.Jwt.SessionTokenDuration.Duration.Seconds()), user)
}
