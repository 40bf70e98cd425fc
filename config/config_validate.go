package config

import (
	"fmt"
	"net"

	"github.com/orlanda/accounts/crypto"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateJwt(&cfg.Jwt); err != nil {
		return fmt.Errorf("jwt config validation failed: %w", err)
	}
	if err := validateOtp(&cfg.Otp); err != nil {
		return fmt.Errorf("otp config validation failed: %w", err)
	}
	if err := validateScheduler(&cfg.Scheduler); err != nil {
		return fmt.Errorf("scheduler config validation failed: %w", err)
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or :port format.
// If only a port is provided (e.g., ":8080"), it defaults the host to "localhost".
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
	}
	// SplitHostPort accepts ":8080" and returns an empty host.
	if host == "" {
		host = "localhost"
	}

	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}

	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	return nil
}

func validateJwt(jwt *Jwt) error {
	secrets := map[string]string{
		"session secret":        jwt.SessionSecret,
		"creation secret":       jwt.CreationSecret,
		"challenge secret":      jwt.ChallengeSecret,
		"password reset secret": jwt.PasswordResetSecret,
	}
	for name, secret := range secrets {
		if len(secret) < crypto.MinKeyLength {
			return fmt.Errorf("%s must be at least %d characters", name, crypto.MinKeyLength)
		}
	}

	durations := map[string]Duration{
		"session token duration":  jwt.SessionTokenDuration,
		"creation token duration": jwt.CreationTokenDuration,
		"challenge duration":      jwt.ChallengeDuration,
		"password reset duration": jwt.PasswordResetDuration,
	}
	for name, d := range durations {
		if d.Duration <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

func validateOtp(otp *Otp) error {
	if otp.TTL.Duration <= 0 {
		return fmt.Errorf("otp ttl must be positive")
	}
	if otp.SweepInterval.Duration <= 0 {
		return fmt.Errorf("otp sweep interval must be positive")
	}
	return nil
}

func validateScheduler(s *Scheduler) error {
	if s.Interval.Duration <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if s.MaxJobsPerTick <= 0 {
		return fmt.Errorf("scheduler max jobs per tick must be positive")
	}
	if s.ConcurrencyMultiplier <= 0 {
		return fmt.Errorf("scheduler concurrency multiplier must be positive")
	}
	return nil
}
