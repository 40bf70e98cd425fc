package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orlanda/accounts/crypto"
	"github.com/orlanda/accounts/db"
)

// CreateAccountHandler exchanges a creation token plus a chosen password for
// a session. This is the single point where manual registrations and
// first-time Google logins become user rows, and where password-less
// accounts get their password attached.
// Endpoint: POST /auth/create-account
// Authenticated: No (the creation token is the credential)
// Allowed Mimetype: application/json
func (a *App) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
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
	pending, err := crypto.ParseCreationToken(req.Token, []byte(cfg.Jwt.CreationSecret))
	if err != nil {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	if err := ValidatePassword(req.Password); err != nil {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	hash, err := crypto.GenerateHash(req.Password)
	if err != nil {
		a.Logger().Error("password hashing failed", "err", err)
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	var user *db.User
	if pending.IsUpgrade {
		user, err = a.upgradeAccount(pending, string(hash))
	} else {
		user, err = a.createAccount(pending, string(hash))
	}
	if err != nil {
		switch {
		case errors.Is(err, db.ErrConstraintUnique):
			// Lost the completion race to a concurrent registration for
			// the same email.
			writeJsonError(w, errorEmailConflict)
		case errors.Is(err, errUpgradeTargetGone):
			writeJsonError(w, errorNotFound)
		default:
			a.Logger().Error("account completion failed", "upgrade", pending.IsUpgrade, "err", err)
			writeJsonError(w, errorAuthDatabaseError)
		}
		return
	}

	token, _, err := crypto.NewSessionToken(user.ID, []byte(cfg.Jwt.SessionSecret), cfg.Jwt.SessionTokenDuration.Duration)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, token, int(cfg.Jwt.SessionTokenDuration.Duration.Seconds()), user)
}

var errUpgradeTargetGone = errors.New("upgrade target user no longer exists")

func (a *App) createAccount(pending *crypto.PendingUser, hash string) (*db.User, error) {
	provider := pending.Provider
	if provider == "" {
		provider = db.ProviderEmail
	}
	return a.DbAuth().CreateUserWithPassword(db.User{
		Email:      pending.Email,
		Name:       pending.Name,
		Password:   hash,
		Picture:    pending.Picture,
		Provider:   provider,
		ProviderID: pending.ProviderID,
	})
}

// upgradeAccount attaches the password to the existing row named by the
// token. No new user is created; the id stays stable across the upgrade.
func (a *App) upgradeAccount(pending *crypto.PendingUser, hash string) (*db.User, error) {
	user, err := a.DbAuth().GetUserById(pending.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUpgradeTargetGone
	}

	err = a.DbAuth().UpgradeToProvider(user.ID, hash, pending.Provider, pending.ProviderID, pending.Picture)
	if err != nil {
		return nil, err
	}

	if a.UserCache() != nil {
		a.UserCache().Del(user.ID)
	}

	user, err = a.DbAuth().GetUserById(user.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUpgradeTargetGone
	}
	return user, nil
}
