package main

import (
	"net/http"

	"github.com/orlanda/accounts/config"
	"github.com/orlanda/accounts/core"
)

func routes(app *core.App) {
	r := app.Router()

	// OAuth2 flows are browser navigations.
	r.Handle(http.MethodGet, "/auth/google", app.OAuth2StartHandler(config.OAuth2ProviderGoogle))
	r.Handle(http.MethodGet, "/auth/google/callback", app.OAuth2CallbackHandler(config.OAuth2ProviderGoogle))
	r.Handle(http.MethodGet, "/auth/facebook", app.OAuth2StartHandler(config.OAuth2ProviderFacebook))
	r.Handle(http.MethodGet, "/auth/facebook/callback", app.OAuth2CallbackHandler(config.OAuth2ProviderFacebook))

	// JSON API.
	r.HandleFunc(http.MethodPost, "/auth/register", app.RegisterHandler)
	r.HandleFunc(http.MethodPost, "/auth/login", app.LoginWithPasswordHandler)
	r.HandleFunc(http.MethodPost, "/verify-otp", app.VerifyOtpHandler)
	r.HandleFunc(http.MethodPost, "/auth/resend-otp", app.ResendOtpHandler)
	r.HandleFunc(http.MethodPost, "/auth/create-account", app.CreateAccountHandler)
	r.HandleFunc(http.MethodPost, "/auth/verify-password", app.VerifyPasswordHandler)
	r.HandleFunc(http.MethodPost, "/auth/forgot-password", app.RequestPasswordResetHandler)
	r.HandleFunc(http.MethodPost, "/auth/reset-password", app.ConfirmPasswordResetHandler)

	r.HandleFunc(http.MethodGet, "/api/me", app.MeHandler)
}
