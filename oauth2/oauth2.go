package oauth2

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/db"
)

// UserFromUserInfoURL maps a provider's userinfo response onto a db.User.
// Only the profile fields are filled in; ID, timestamps and password are
// left for the store to assign.
func UserFromUserInfoURL(resp *http.Response, providerName string) (*db.User, error) {
	switch providerName {
	case config.OAuth2ProviderGoogle:
		return googleUser(resp)
	case config.OAuth2ProviderFacebook:
		return facebookUser(resp)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func googleUser(resp *http.Response) (*db.User, error) {
	extracted := struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}

	// An unverified Google email must not become a join key; anyone can
	// register an address they do not control.
	if !extracted.EmailVerified {
		return nil, errors.New("google email not verified")
	}
	if extracted.Email == "" {
		return nil, errors.New("google user info missing email")
	}

	return &db.User{
		Email:      extracted.Email,
		Name:       extracted.Name,
		Picture:    extracted.Picture,
		Provider:   db.ProviderGoogle,
		ProviderID: extracted.Sub,
	}, nil
}

func facebookUser(resp *http.Response) (*db.User, error) {
	extracted := struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&extracted); err != nil {
		return nil, fmt.Errorf("failed to decode facebook user info: %w", err)
	}

	// Facebook omits the email when the account has none or the user
	// declined the permission. Without an email there is no join key.
	if extracted.Email == "" {
		return nil, errors.New("facebook user info missing email")
	}

	return &db.User{
		Email:      extracted.Email,
		Name:       extracted.Name,
		Picture:    extracted.Picture.Data.URL,
		Provider:   db.ProviderFacebook,
		ProviderID: extracted.ID,
	}, nil
}

// IsStaleAuthorizationCode reports whether the token exchange failed because
// the authorization code was already used or expired. Browsers replay
// callback URLs (refresh, back button, prefetch), so this case is routine
// and is handled as a benign redirect rather than an error.
func IsStaleAuthorizationCode(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return false
	}
	return retrieveErr.ErrorCode == "invalid_grant"
}
