package core

import (
	"net/http"

	"github.com/orlanda/accounts/db"
)

// This file defines the standardized response formats for authentication
// endpoints, so login, OTP completion, account creation and password
// challenge all answer with the same shape:
//
// {
//   "status": 200,
//   "code": "ok_authentication",
//   "message": "Authentication successful",
//   "data": {
//     "token_type": "Bearer",
//     "access_token": "eyJhbGciOiJIUzI...",
//     "expires_in": 604800,
//     "record": { "id": "...", "email": "...", "name": "...", ... }
//   }
// }

// AuthRecord represents the user record in authentication responses.
// Password hash and provider id never appear here.
type AuthRecord struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Picture     string `json:"picture,omitempty"`
	Provider    string `json:"provider"`
	HasPassword bool   `json:"has_password"`
}

// AuthData represents the authentication response structure
type AuthData struct {
	TokenType   string     `json:"token_type"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
	Record      AuthRecord `json:"record"`
}

// NewAuthData creates a new AuthData instance
func NewAuthData(token string, expiresIn int, user *db.User) *AuthData {
	return &AuthData{
		TokenType:   "Bearer",
		AccessToken: token,
		ExpiresIn:   expiresIn,
		Record:      newAuthRecord(user),
	}
}

func newAuthRecord(user *db.User) AuthRecord {
	return AuthRecord{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Picture:     user.Picture,
		Provider:    user.Provider,
		HasPassword: user.Password != "",
	}
}

// writeAuthResponse writes a standardized authentication response
func writeAuthResponse(w http.ResponseWriter, token string, expiresIn int, user *db.User) {
	authData := NewAuthData(token, expiresIn, user)
	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkAuthentication,
			Message: "Authentication successful",
		},
		Data: authData,
	}
	writeJsonWithData(w, response)
}
