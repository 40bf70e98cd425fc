package config

import (
	"time"

	"github.com/orlanda/accounts/crypto"
)

// NewDefaultConfig creates a new Config with sensible defaults.
// All secret values are randomly generated placeholders. Load refuses to
// start unless the environment overrides them; tests construct configs
// directly and keep the generated values.
func NewDefaultConfig() *Config {
	return &Config{
		DBFile: "accounts.db",
		Jwt: Jwt{
			SessionSecret:         crypto.RandomString(32, crypto.AlphanumericAlphabet),
			SessionTokenDuration:  Duration{Duration: 7 * 24 * time.Hour},
			CreationSecret:        crypto.RandomString(32, crypto.AlphanumericAlphabet),
			CreationTokenDuration: Duration{Duration: 15 * time.Minute},
			ChallengeSecret:       crypto.RandomString(32, crypto.AlphanumericAlphabet),
			ChallengeDuration:     Duration{Duration: 10 * time.Minute},
			PasswordResetSecret:   crypto.RandomString(32, crypto.AlphanumericAlphabet),
			PasswordResetDuration: Duration{Duration: 15 * time.Minute},
		},
		Otp: Otp{
			TTL:           Duration{Duration: 10 * time.Minute},
			SweepInterval: Duration{Duration: 5 * time.Minute},
		},
		Server: Server{
			Addr:                    ":8080",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 3 * time.Second},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
			PublicURL:               "",
		},
		Scheduler: Scheduler{
			Interval:              Duration{Duration: 15 * time.Second},
			MaxJobsPerTick:        10,
			ConcurrencyMultiplier: 2,
			KeepaliveInterval:     Duration{Duration: 5 * time.Minute},
		},
		Smtp: Smtp{
			Enabled:     false,
			Host:        "smtp.gmail.com",
			Port:        587,
			FromName:    "Accounts",
			FromAddress: "",
			LocalName:   "",
			UseTLS:      false,
			UseStartTLS: true,
		},
		RateLimits: RateLimits{
			PasswordResetCooldown: Duration{Duration: 15 * time.Minute},
		},
		Frontend: Frontend{
			BaseURL:               "http://localhost:3000",
			LoginPath:             "/login",
			VerifyOtpPath:         "/verify-otp",
			PasswordEntryPath:     "/create-account",
			PasswordChallengePath: "/verify-password",
			PasswordResetPath:     "/reset-password",
		},
		OAuth2Providers: map[string]OAuth2Provider{
			OAuth2ProviderGoogle: {
				Name:            OAuth2ProviderGoogle,
				DisplayName:     "Google",
				RedirectURLPath: "/auth/google/callback",
				AuthURL:         "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL:        "https://oauth2.googleapis.com/token",
				UserInfoURL:     "https://www.googleapis.com/oauth2/v3/userinfo",
				Scopes:          []string{"https://www.googleapis.com/auth/userinfo.profile", "https://www.googleapis.com/auth/userinfo.email"},
				PKCE:            false,
			},
			OAuth2ProviderFacebook: {
				Name:            OAuth2ProviderFacebook,
				DisplayName:     "Facebook",
				RedirectURLPath: "/auth/facebook/callback",
				AuthURL:         "https://www.facebook.com/v19.0/dialog/oauth",
				TokenURL:        "https://graph.facebook.com/v19.0/oauth/access_token",
				UserInfoURL:     "https://graph.facebook.com/me?fields=id,name,email,picture",
				Scopes:          []string{"email", "public_profile"},
				PKCE:            false,
			},
		},
	}
}
