package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinKeyLength is the minimum required length for JWT signing keys.
	// 32 bytes (256 bits) is the minimum recommended length for HMAC-SHA256 keys.
	MinKeyLength = 32

	// JWT claim keys
	ClaimIssuedAt   = "iat"
	ClaimExpiresAt  = "exp"
	ClaimType       = "type"
	ClaimUserID     = "user_id"
	ClaimEmail      = "email"
	ClaimName       = "name"
	ClaimPicture    = "picture"
	ClaimProvider   = "provider"
	ClaimProviderID = "provider_id"
	ClaimIsUpgrade  = "is_upgrade"

	// Values of the "type" claim. Every token carries one so that a token
	// minted for one purpose is rejected by every other purpose's verifier.
	ClaimTypeSession       = "session"
	ClaimTypeCreation      = "creation"
	ClaimTypeChallenge     = "password_challenge"
	ClaimTypePasswordReset = "password_reset"
)

var (
	// ErrInvalidToken covers signature mismatch, malformed tokens, elapsed
	// TTL and wrong-purpose tokens alike. Callers must not be able to tell
	// an expired token from a forged one.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidSecretLength is returned for signing keys below MinKeyLength
	ErrInvalidSecretLength = errors.New("invalid secret length")
)

// NewJwt generates a signed token with the provided claims.
// iat and exp are set here; the payload must carry everything else.
func NewJwt(payload jwt.MapClaims, signingKey []byte, duration time.Duration) (string, time.Time, error) {
	if len(signingKey) < MinKeyLength {
		return "", time.Time{}, ErrInvalidSecretLength
	}

	now := time.Now()
	expirationTime := now.Add(duration)
	payload[ClaimIssuedAt] = now.Unix()
	payload[ClaimExpiresAt] = expirationTime.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString(signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expirationTime, nil
}

// ParseJwt verifies a token and returns its claims. Only HS256 is accepted.
// All failure modes map to ErrInvalidToken; distinguishing "expired" from
// "forged" would leak the validity window to an attacker.
func ParseJwt(token string, verificationKey []byte) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	parsedToken, err := parser.Parse(token, func(t *jwt.Token) (any, error) {
		return verificationKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims, ok := parsedToken.Claims.(jwt.MapClaims); ok && parsedToken.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
