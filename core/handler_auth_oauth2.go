package core

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/crypto"
	"github.com/orlanda/accounts/db"
	oauth2provider "github.com/orlanda/accounts/oauth2"
)

// oauth2TokenExchangeTimeout bounds the token exchange so an unresponsive
// provider cannot hang the callback.
const oauth2TokenExchangeTimeout = 10 * time.Second

// oauth2StateCookie carries the anti-forgery state between the start
// redirect and the provider callback.
const oauth2StateCookie = "oauth2_state"

func (a *App) oauth2Config(provider config.OAuth2Provider) oauth2.Config {
	cfg := a.Config()
	return oauth2.Config{
		ClientID:     provider.ClientID,
		ClientSecret: provider.ClientSecret,
		RedirectURL:  cfg.Server.BaseURL() + provider.RedirectURLPath,
		Scopes:       provider.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.AuthURL,
			TokenURL: provider.TokenURL,
		},
	}
}

// redirectFrontend sends the browser to a frontend surface. OAuth flows are
// browser navigations, so errors surface as query parameters on the login
// page instead of JSON bodies.
func (a *App) redirectFrontend(w http.ResponseWriter, r *http.Request, path string, params url.Values) {
	http.Redirect(w, r, a.Config().Frontend.URL(path, params), http.StatusFound)
}

func (a *App) redirectLoginError(w http.ResponseWriter, r *http.Request, code string) {
	a.redirectFrontend(w, r, a.Config().Frontend.LoginPath, url.Values{"error": {code}})
}

// OAuth2StartHandler begins the provider flow: it stores an anti-forgery
// state in a short-lived cookie and sends the browser to the provider's
// consent screen.
// Endpoint: GET /auth/{google,facebook}
// Authenticated: No
func (a *App) OAuth2StartHandler(providerName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := a.Config().OAuth2Providers[providerName]
		if !ok || provider.ClientID == "" || provider.ClientSecret == "" {
			a.redirectLoginError(w, r, "provider_unavailable")
			return
		}

		state := crypto.RandomString(32, crypto.AlphanumericAlphabet)
		http.SetCookie(w, &http.Cookie{
			Name:     oauth2StateCookie,
			Value:    state,
			Path:     "/auth",
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		oauth2Cfg := a.oauth2Config(provider)
		http.Redirect(w, r, oauth2Cfg.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuth2CallbackHandler handles the provider redirect for both Google and
// Facebook. The two providers share exchange and profile mapping; they
// diverge only at the reconciliation step.
// Endpoint: GET /auth/{google,facebook}/callback?code=&state=
// Authenticated: No
func (a *App) OAuth2CallbackHandler(providerName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := a.Config().OAuth2Providers[providerName]
		if !ok || provider.ClientID == "" || provider.ClientSecret == "" {
			a.redirectLoginError(w, r, "provider_unavailable")
			return
		}

		query := r.URL.Query()
		code := query.Get("code")
		if code == "" {
			// The user canceled at the consent screen, or the provider
			// reported an error. Either way, back to login.
			a.redirectFrontend(w, r, a.Config().Frontend.LoginPath, nil)
			return
		}

		if cookie, err := r.Cookie(oauth2StateCookie); err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
			a.redirectLoginError(w, r, "state_mismatch")
			return
		}
		// One-shot state.
		http.SetCookie(w, &http.Cookie{Name: oauth2StateCookie, Path: "/auth", MaxAge: -1, HttpOnly: true})

		oauth2Cfg := a.oauth2Config(provider)
		ctx, cancel := context.WithTimeout(r.Context(), oauth2TokenExchangeTimeout)
		defer cancel()

		token, err := oauth2Cfg.Exchange(ctx, code)
		if err != nil {
			if oauth2provider.IsStaleAuthorizationCode(err) {
				// Replayed callback URL (refresh, back button, prefetch).
				// Routine, not an error.
				a.redirectFrontend(w, r, a.Config().Frontend.LoginPath, nil)
				return
			}
			a.Logger().Error("oauth2 token exchange failed", "provider", providerName, "err", err)
			a.redirectLoginError(w, r, "upstream")
			return
		}

		client := oauth2Cfg.Client(ctx, token)
		resp, err := client.Get(provider.UserInfoURL)
		if err != nil {
			a.Logger().Error("oauth2 user info fetch failed", "provider", providerName, "err", err)
			a.redirectLoginError(w, r, "upstream")
			return
		}
		defer resp.Body.Close()

		profile, err := oauth2provider.UserFromUserInfoURL(resp, provider.Name)
		if err != nil {
			a.Logger().Info("oauth2 profile rejected", "provider", providerName, "err", err)
			a.redirectLoginError(w, r, "email_required")
			return
		}
		if err := ValidateEmail(profile.Email); err != nil {
			a.redirectLoginError(w, r, "email_required")
			return
		}

		switch providerName {
		case config.OAuth2ProviderGoogle:
			a.finishGoogleCallback(w, r, profile)
		case config.OAuth2ProviderFacebook:
			a.finishFacebookCallback(w, r, profile)
		default:
			a.redirectLoginError(w, r, "provider_unavailable")
		}
	}
}

// finishGoogleCallback runs the reconciliation decision for a verified
// Google profile and redirects the browser to the surface matching the
// outcome. A Google callback never mints a session here.
func (a *App) finishGoogleCallback(w http.ResponseWriter, r *http.Request, profile *db.User) {
	cfg := a.Config()

	existing, err := a.DbAuth().GetUserByEmail(profile.Email)
	if err != nil {
		a.Logger().Error("oauth2 user lookup failed", "err", err)
		a.redirectLoginError(w, r, "internal")
		return
	}

	pending := crypto.PendingUser{
		Name:       profile.Name,
		Email:      profile.Email,
		Picture:    profile.Picture,
		Provider:   profile.Provider,
		ProviderID: profile.ProviderID,
	}

	switch ReconcileGoogleProfile(existing) {
	case OutcomeNewViaOtp:
		if err := a.beginOtpFlow(profile.Email, db.OtpKindGoogleTwoFactor, pending); err != nil {
			a.Logger().Error("google otp flow failed", "err", err)
			a.redirectLoginError(w, r, "internal")
			return
		}
		a.redirectFrontend(w, r, cfg.Frontend.VerifyOtpPath, url.Values{"email": {profile.Email}})

	case OutcomeExistingPasswordChallenge:
		token, err := crypto.NewChallengeToken(existing.ID, existing.Email, []byte(cfg.Jwt.ChallengeSecret), cfg.Jwt.ChallengeDuration.Duration)
		if err != nil {
			a.redirectLoginError(w, r, "internal")
			return
		}
		a.redirectFrontend(w, r, cfg.Frontend.PasswordChallengePath, url.Values{
			"token": {token},
			"email": {existing.Email},
		})

	case OutcomeExistingPasswordlessUpgrade:
		pending.IsUpgrade = true
		pending.UserID = existing.ID
		token, err := crypto.NewCreationToken(pending, []byte(cfg.Jwt.CreationSecret), cfg.Jwt.CreationTokenDuration.Duration)
		if err != nil {
			a.redirectLoginError(w, r, "internal")
			return
		}
		a.redirectFrontend(w, r, cfg.Frontend.PasswordEntryPath, url.Values{
			"token":   {token},
			"upgrade": {"1"},
		})
	}
}

// finishFacebookCallback trusts the provider: upsert on email and mint a
// session immediately. An existing row is left untouched by the upsert.
func (a *App) finishFacebookCallback(w http.ResponseWriter, r *http.Request, profile *db.User) {
	cfg := a.Config()

	user, err := a.DbAuth().CreateUserWithOauth2(*profile)
	if err != nil {
		a.Logger().Error("oauth2 upsert failed", "err", err)
		a.redirectLoginError(w, r, "internal")
		return
	}

	token, _, err := crypto.NewSessionToken(user.ID, []byte(cfg.Jwt.SessionSecret), cfg.Jwt.SessionTokenDuration.Duration)
	if err != nil {
		a.redirectLoginError(w, r, "internal")
		return
	}

	a.redirectFrontend(w, r, "/", url.Values{"token": {token}})
}
