package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setRequiredEnv provides the full secret set Load insists on.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	secret := strings.Repeat("s", 32)
	for _, name := range []string{EnvSessionSecret, EnvCreationSecret, EnvChallengeSecret, EnvPasswordResetSecret} {
		t.Setenv(name, secret)
	}
	t.Setenv(EnvGoogleClientID, "google-id")
	t.Setenv(EnvGoogleClientSecret, "google-secret")
	t.Setenv(EnvFacebookClientID, "facebook-id")
	t.Setenv(EnvFacebookClientSecret, "facebook-secret")
}

func TestDurationUnmarshalText(t *testing.T) {
	testCases := []struct {
		text    string
		want    time.Duration
		wantErr bool
	}{
		{"15m", 15 * time.Minute, false},
		{"168h", 168 * time.Hour, false},
		{"1h30m", 90 * time.Minute, false},
		{"", 0, true},
		{"fifteen", 0, true},
	}

	for _, tc := range testCases {
		var d Duration
		err := d.UnmarshalText([]byte(tc.text))
		if (err != nil) != tc.wantErr {
			t.Errorf("%q: err = %v, wantErr %v", tc.text, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && d.Duration != tc.want {
			t.Errorf("%q: got %v, want %v", tc.text, d.Duration, tc.want)
		}
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("default configuration does not validate: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"addr without port", func(c *Config) { c.Server.Addr = "localhost" }},
		{"short session secret", func(c *Config) { c.Jwt.SessionSecret = "short" }},
		{"short creation secret", func(c *Config) { c.Jwt.CreationSecret = "short" }},
		{"zero session duration", func(c *Config) { c.Jwt.SessionTokenDuration = Duration{} }},
		{"zero otp ttl", func(c *Config) { c.Otp.TTL = Duration{} }},
		{"zero sweep interval", func(c *Config) { c.Otp.SweepInterval = Duration{} }},
		{"zero scheduler interval", func(c *Config) { c.Scheduler.Interval = Duration{} }},
		{"zero max jobs", func(c *Config) { c.Scheduler.MaxJobsPerTick = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateNormalizesBareAddr(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.Addr = ":9090"
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Server.Addr != "localhost:9090" {
		t.Errorf("addr: got %q, want localhost:9090", cfg.Server.Addr)
	}
}

func TestLoadOverlaysTomlFile(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
db_file = "custom.db"

[otp]
ttl = "3m"
sweep_interval = "1m"

[jwt]
session_token_duration = "24h"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBFile != "custom.db" {
		t.Errorf("db file: got %q", cfg.DBFile)
	}
	if cfg.Otp.TTL.Duration != 3*time.Minute {
		t.Errorf("otp ttl: got %v", cfg.Otp.TTL.Duration)
	}
	if cfg.Jwt.SessionTokenDuration.Duration != 24*time.Hour {
		t.Errorf("session duration: got %v", cfg.Jwt.SessionTokenDuration.Duration)
	}
	// Untouched sections keep their defaults.
	if cfg.Scheduler.MaxJobsPerTick != 10 {
		t.Errorf("scheduler defaults lost: %+v", cfg.Scheduler)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml"), testLogger()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadAppliesEnvSecrets(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("", testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Jwt.SessionSecret != strings.Repeat("s", 32) {
		t.Error("session secret not taken from environment")
	}
	google := cfg.OAuth2Providers[OAuth2ProviderGoogle]
	if google.ClientID != "google-id" || google.ClientSecret != "google-secret" {
		t.Errorf("google credentials not taken from environment: %+v", google)
	}
}

func TestLoadRejectsShortEnvSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvSessionSecret, "short")
	if _, err := Load("", testLogger()); err == nil {
		t.Error("expected validation error for short secret")
	}
}

// Startup aborts when required secrets never reach the process: signing
// secrets generated at boot would invalidate every outstanding token on the
// next restart.
func TestLoadRequiresEnvSigningSecrets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvCreationSecret, "")

	_, err := Load("", testLogger())
	if err == nil {
		t.Fatal("expected error for missing signing secret")
	}
	if !strings.Contains(err.Error(), EnvCreationSecret) {
		t.Errorf("error does not name the missing variable: %v", err)
	}
}

func TestLoadRequiresOauth2Credentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvFacebookClientSecret, "")

	_, err := Load("", testLogger())
	if err == nil {
		t.Fatal("expected error for missing oauth2 credentials")
	}
	if !strings.Contains(err.Error(), OAuth2ProviderFacebook) {
		t.Errorf("error does not name the provider: %v", err)
	}
}

func TestLoadRequiresSmtpCredentialsWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[smtp]
enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path, testLogger()); err == nil {
		t.Error("expected error for enabled smtp without credentials")
	}

	t.Setenv(EnvSmtpUsername, "mailer@example.com")
	t.Setenv(EnvSmtpPassword, "app-password")
	if _, err := Load(path, testLogger()); err != nil {
		t.Errorf("Load failed with smtp credentials present: %v", err)
	}
}

func TestProvider(t *testing.T) {
	first := NewDefaultConfig()
	p := NewProvider(first)

	if p.Get() != first {
		t.Error("Get did not return the stored config")
	}

	second := NewDefaultConfig()
	p.Update(second)
	if p.Get() != second {
		t.Error("Update not visible through Get")
	}

	// A nil update is ignored rather than clearing the config.
	p.Update(nil)
	if p.Get() != second {
		t.Error("nil Update replaced the config")
	}
}

func TestNewProviderPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewProvider(nil)
}

func TestFrontendURL(t *testing.T) {
	f := Frontend{BaseURL: "http://localhost:3000/"}

	if got := f.URL("/login", nil); got != "http://localhost:3000/login" {
		t.Errorf("got %q", got)
	}
	got := f.URL("/verify-otp", map[string][]string{"email": {"ada@example.com"}})
	if got != "http://localhost:3000/verify-otp?email=ada%40example.com" {
		t.Errorf("got %q", got)
	}
}

func TestServerBaseURL(t *testing.T) {
	s := Server{Addr: ":8080"}
	if got := s.BaseURL(); got != "http://localhost:8080" {
		t.Errorf("got %q", got)
	}

	s = Server{Addr: "localhost:8080", PublicURL: "https://accounts.example.com/"}
	if got := s.BaseURL(); got != "https://accounts.example.com" {
		t.Errorf("got %q", got)
	}
}
