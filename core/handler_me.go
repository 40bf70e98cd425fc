package core

import (
	"net/http"
	"time"

	"github.com/orlanda/accounts/db"
)

// MeRecord is the sanitized user representation. Password hash and provider
// id never leave the server.
type MeRecord struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Picture     string    `json:"picture,omitempty"`
	Provider    string    `json:"provider"`
	HasPassword bool      `json:"has_password"`
	Created     time.Time `json:"created"`
}

// MeHandler returns the authenticated user's own record.
// Endpoint: GET /api/me
// Authenticated: Yes (Bearer session token)
func (a *App) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, resp, err := a.Auth().Authenticate(r)
	if err != nil {
		writeJsonError(w, resp)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkMe,
			Message: "OK",
		},
		Data: newMeRecord(user),
	})
}

func newMeRecord(user *db.User) MeRecord {
	return MeRecord{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Picture:     user.Picture,
		Provider:    user.Provider,
		HasPassword: user.Password != "",
		Created:     user.Created,
	}
}
