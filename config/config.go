package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Environment variable names for secrets. Secrets never live in the TOML
// file; Load overlays them after parsing.
const (
	EnvSessionSecret       = "JWT_SESSION_SECRET"
	EnvCreationSecret      = "JWT_CREATION_SECRET"
	EnvChallengeSecret     = "JWT_CHALLENGE_SECRET"
	EnvPasswordResetSecret = "JWT_PASSWORD_RESET_SECRET"

	EnvSmtpUsername = "SMTP_USERNAME"
	EnvSmtpPassword = "SMTP_PASSWORD"

	EnvGoogleClientID       = "OAUTH2_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret   = "OAUTH2_GOOGLE_CLIENT_SECRET"
	EnvFacebookClientID     = "OAUTH2_FACEBOOK_CLIENT_ID"
	EnvFacebookClientSecret = "OAUTH2_FACEBOOK_CLIENT_SECRET"
)

const (
	OAuth2ProviderGoogle   = "google"
	OAuth2ProviderFacebook = "facebook"
)

// Duration wraps time.Duration so TOML files can say "15m" or "168h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	DBFile string `toml:"db_file"`

	Jwt        Jwt        `toml:"jwt"`
	Otp        Otp        `toml:"otp"`
	Server     Server     `toml:"server"`
	Scheduler  Scheduler  `toml:"scheduler"`
	Smtp       Smtp       `toml:"smtp"`
	RateLimits RateLimits `toml:"rate_limits"`
	Frontend   Frontend   `toml:"frontend"`

	OAuth2Providers map[string]OAuth2Provider `toml:"oauth2_providers"`
}

// Jwt holds one secret per token purpose. A token signed for one purpose
// never verifies under another purpose's secret.
type Jwt struct {
	SessionSecret         string   `toml:"-"`
	SessionTokenDuration  Duration `toml:"session_token_duration"`
	CreationSecret        string   `toml:"-"`
	CreationTokenDuration Duration `toml:"creation_token_duration"`
	ChallengeSecret       string   `toml:"-"`
	ChallengeDuration     Duration `toml:"challenge_duration"`
	PasswordResetSecret   string   `toml:"-"`
	PasswordResetDuration Duration `toml:"password_reset_duration"`
}

type Otp struct {
	TTL Duration `toml:"ttl"`
	// SweepInterval is how often the recurring cleanup job runs. Expiry is
	// enforced on read regardless.
	SweepInterval Duration `toml:"sweep_interval"`
}

type Server struct {
	Addr                    string   `toml:"addr"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
	// PublicURL is the externally visible base, used to build OAuth2
	// redirect URLs and links in emails. Falls back to http://<Addr>.
	PublicURL string `toml:"public_url"`
}

// BaseURL returns the address clients reach the server under.
func (s *Server) BaseURL() string {
	if s.PublicURL != "" {
		return strings.TrimSuffix(s.PublicURL, "/")
	}
	addr := s.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

type Scheduler struct {
	Interval              Duration `toml:"interval"`
	MaxJobsPerTick        int      `toml:"max_jobs_per_tick"`
	ConcurrencyMultiplier int      `toml:"concurrency_multiplier"`
	// KeepaliveInterval paces the recurring no-op job that proves the
	// queue-claim-execute loop is alive end to end.
	KeepaliveInterval Duration `toml:"keepalive_interval"`
}

type Smtp struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	FromName    string `toml:"from_name"`
	FromAddress string `toml:"from_address"`
	LocalName   string `toml:"local_name"`
	UseTLS      bool   `toml:"use_tls"`
	UseStartTLS bool   `toml:"use_start_tls"`
	Username    string `toml:"-"`
	Password    string `toml:"-"`
}

type RateLimits struct {
	// PasswordResetCooldown is the bucket width used to deduplicate reset
	// emails per address.
	PasswordResetCooldown Duration `toml:"password_reset_cooldown"`
}

// Frontend names the browser surfaces the OAuth2 callbacks redirect to.
// Paths are resolved against BaseURL.
type Frontend struct {
	BaseURL               string `toml:"base_url"`
	LoginPath             string `toml:"login_path"`
	VerifyOtpPath         string `toml:"verify_otp_path"`
	PasswordEntryPath     string `toml:"password_entry_path"`
	PasswordChallengePath string `toml:"password_challenge_path"`
	PasswordResetPath     string `toml:"password_reset_path"`
}

// URL joins a frontend path with query parameters.
func (f *Frontend) URL(path string, params url.Values) string {
	base := strings.TrimSuffix(f.BaseURL, "/") + path
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

type OAuth2Provider struct {
	Name            string   `toml:"name"`
	DisplayName     string   `toml:"display_name"`
	RedirectURLPath string   `toml:"redirect_url_path"`
	AuthURL         string   `toml:"auth_url"`
	TokenURL        string   `toml:"token_url"`
	UserInfoURL     string   `toml:"user_info_url"`
	Scopes          []string `toml:"scopes"`
	PKCE            bool     `toml:"pkce"`
	ClientID        string   `toml:"-"`
	ClientSecret    string   `toml:"-"`
}
