package crypto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The parser validates format, signature and exp/iat. The functions below
// enforce the presence and purpose of our application claims. A missing or
// mismatched claim is indistinguishable from a forged token on the outside.

// PendingUser is the payload of a creation token: the identity fields a
// bearer may turn into a user record (or attach to one, when IsUpgrade is
// set) after having proven ownership of the email.
type PendingUser struct {
	Name       string
	Email      string
	Picture    string
	Provider   string
	ProviderID string

	// IsUpgrade marks a password-less existing account. UserID is only set
	// together with IsUpgrade and points at the row to attach a password to.
	IsUpgrade bool
	UserID    string
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func requireType(claims jwt.MapClaims, want string) error {
	if claimString(claims, ClaimType) != want {
		return ErrInvalidToken
	}
	return nil
}

// NewSessionToken mints the long-lived credential proving "bearer is user X".
func NewSessionToken(userID string, secret []byte, duration time.Duration) (string, time.Time, error) {
	return NewJwt(jwt.MapClaims{
		ClaimType:   ClaimTypeSession,
		ClaimUserID: userID,
	}, secret, duration)
}

// ParseSessionToken verifies a session token and returns the user id.
func ParseSessionToken(token string, secret []byte) (string, error) {
	claims, err := ParseJwt(token, secret)
	if err != nil {
		return "", err
	}
	if err := requireType(claims, ClaimTypeSession); err != nil {
		return "", err
	}
	userID := claimString(claims, ClaimUserID)
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// NewCreationToken mints the short-lived credential that allows finishing
// account creation (or a password upgrade) without re-proving the email.
func NewCreationToken(p PendingUser, secret []byte, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		ClaimType:  ClaimTypeCreation,
		ClaimName:  p.Name,
		ClaimEmail: p.Email,
	}
	if p.Picture != "" {
		claims[ClaimPicture] = p.Picture
	}
	if p.Provider != "" {
		claims[ClaimProvider] = p.Provider
	}
	if p.ProviderID != "" {
		claims[ClaimProviderID] = p.ProviderID
	}
	if p.IsUpgrade {
		claims[ClaimIsUpgrade] = true
		claims[ClaimUserID] = p.UserID
	}
	token, _, err := NewJwt(claims, secret, duration)
	return token, err
}

// ParseCreationToken verifies a creation token and returns its pending user.
func ParseCreationToken(token string, secret []byte) (*PendingUser, error) {
	claims, err := ParseJwt(token, secret)
	if err != nil {
		return nil, err
	}
	if err := requireType(claims, ClaimTypeCreation); err != nil {
		return nil, err
	}
	p := &PendingUser{
		Name:       claimString(claims, ClaimName),
		Email:      claimString(claims, ClaimEmail),
		Picture:    claimString(claims, ClaimPicture),
		Provider:   claimString(claims, ClaimProvider),
		ProviderID: claimString(claims, ClaimProviderID),
	}
	if p.Email == "" {
		return nil, ErrInvalidToken
	}
	if upgrade, _ := claims[ClaimIsUpgrade].(bool); upgrade {
		p.IsUpgrade = true
		p.UserID = claimString(claims, ClaimUserID)
		if p.UserID == "" {
			return nil, ErrInvalidToken
		}
	}
	return p, nil
}

// NewChallengeToken mints the credential forcing an existing password-holding
// user to re-enter their password before a session is issued.
func NewChallengeToken(userID, email string, secret []byte, duration time.Duration) (string, error) {
	token, _, err := NewJwt(jwt.MapClaims{
		ClaimType:   ClaimTypeChallenge,
		ClaimUserID: userID,
		ClaimEmail:  email,
	}, secret, duration)
	return token, err
}

// ParseChallengeToken verifies a challenge token, returning user id and email.
func ParseChallengeToken(token string, secret []byte) (userID, email string, err error) {
	claims, err := ParseJwt(token, secret)
	if err != nil {
		return "", "", err
	}
	if err := requireType(claims, ClaimTypeChallenge); err != nil {
		return "", "", err
	}
	userID = claimString(claims, ClaimUserID)
	email = claimString(claims, ClaimEmail)
	if userID == "" || email == "" {
		return "", "", ErrInvalidToken
	}
	return userID, email, nil
}

// NewPasswordResetToken mints the credential emailed by the forgot-password
// flow. It is session-shaped but scoped via the type claim.
func NewPasswordResetToken(userID, email string, secret []byte, duration time.Duration) (string, error) {
	token, _, err := NewJwt(jwt.MapClaims{
		ClaimType:   ClaimTypePasswordReset,
		ClaimUserID: userID,
		ClaimEmail:  email,
	}, secret, duration)
	return token, err
}

// ParsePasswordResetToken verifies a password reset token.
func ParsePasswordResetToken(token string, secret []byte) (userID, email string, err error) {
	claims, err := ParseJwt(token, secret)
	if err != nil {
		return "", "", err
	}
	if err := requireType(claims, ClaimTypePasswordReset); err != nil {
		return "", "", err
	}
	userID = claimString(claims, ClaimUserID)
	email = claimString(claims, ClaimEmail)
	if userID == "" || email == "" {
		return "", "", ErrInvalidToken
	}
	return userID, email, nil
}
