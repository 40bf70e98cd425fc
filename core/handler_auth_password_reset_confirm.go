package core

import (
	"encoding/json"
	"net/http"

	"github.com/orlanda/accounts/crypto"
)

// ConfirmPasswordResetHandler completes the forgot-password flow.
// Endpoint: POST /auth/reset-password
// Authenticated: No (the reset token is the credential)
// Allowed Mimetype: application/json
func (a *App) ConfirmPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
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
	userID, _, err := crypto.ParsePasswordResetToken(req.Token, []byte(cfg.Jwt.PasswordResetSecret))
	if err != nil {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	if err := ValidatePassword(req.Password); err != nil {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	user, err := a.DbAuth().GetUserById(userID)
	if err != nil {
		a.Logger().Error("reset lookup failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}
	if user == nil {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	hash, err := crypto.GenerateHash(req.Password)
	if err != nil {
		a.Logger().Error("password hashing failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	if err := a.DbAuth().UpdatePassword(user.ID, string(hash)); err != nil {
		a.Logger().Error("password update failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	if a.UserCache() != nil {
		a.UserCache().Del(user.ID)
	}

	writeJsonOk(w, okPasswordReset)
}
