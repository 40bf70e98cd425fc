package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// Load builds the runtime configuration: defaults, overlaid by the TOML file
// at path (if non-empty), overlaid by environment secrets, then validated.
func Load(path string, logger *slog.Logger) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to unmarshal TOML: %w", err)
		}
		logger.Info("loaded configuration file", "path", path)
	} else {
		logger.Info("no configuration file given, using defaults")
	}

	applyEnv(cfg)

	if err := requireRuntimeSecrets(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// requireRuntimeSecrets aborts startup when a required secret is missing.
// The token-signing secrets must come from the environment: the randomly
// generated defaults would invalidate every outstanding token on restart.
// OAuth2 providers without client credentials and an enabled SMTP account
// without login credentials can only fail at request time, so they are
// rejected here instead.
func requireRuntimeSecrets(cfg *Config) error {
	jwtEnv := []string{EnvSessionSecret, EnvCreationSecret, EnvChallengeSecret, EnvPasswordResetSecret}
	for _, name := range jwtEnv {
		if os.Getenv(name) == "" {
			return fmt.Errorf("config: %s must be set in the environment", name)
		}
	}

	for name, p := range cfg.OAuth2Providers {
		if p.ClientID == "" || p.ClientSecret == "" {
			return fmt.Errorf("config: oauth2 provider %q is missing client credentials", name)
		}
	}

	if cfg.Smtp.Enabled && (cfg.Smtp.Username == "" || cfg.Smtp.Password == "") {
		return fmt.Errorf("config: smtp is enabled but %s/%s are not set", EnvSmtpUsername, EnvSmtpPassword)
	}
	return nil
}

// applyEnv overlays secrets from the environment; the required set is
// enforced by requireRuntimeSecrets after the overlay.
func applyEnv(cfg *Config) {
	setIfPresent(EnvSessionSecret, &cfg.Jwt.SessionSecret)
	setIfPresent(EnvCreationSecret, &cfg.Jwt.CreationSecret)
	setIfPresent(EnvChallengeSecret, &cfg.Jwt.ChallengeSecret)
	setIfPresent(EnvPasswordResetSecret, &cfg.Jwt.PasswordResetSecret)

	setIfPresent(EnvSmtpUsername, &cfg.Smtp.Username)
	setIfPresent(EnvSmtpPassword, &cfg.Smtp.Password)

	if p, ok := cfg.OAuth2Providers[OAuth2ProviderGoogle]; ok {
		setIfPresent(EnvGoogleClientID, &p.ClientID)
		setIfPresent(EnvGoogleClientSecret, &p.ClientSecret)
		cfg.OAuth2Providers[OAuth2ProviderGoogle] = p
	}
	if p, ok := cfg.OAuth2Providers[OAuth2ProviderFacebook]; ok {
		setIfPresent(EnvFacebookClientID, &p.ClientID)
		setIfPresent(EnvFacebookClientSecret, &p.ClientSecret)
		cfg.OAuth2Providers[OAuth2ProviderFacebook] = p
	}
}

func setIfPresent(envName string, dst *string) {
	if v := os.Getenv(envName); v != "" {
		*dst = v
	}
}
