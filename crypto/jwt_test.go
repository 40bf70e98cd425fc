package crypto

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("test_secret_32_bytes_long_xxxxxx")

func TestNewJwtRejectsShortSecret(t *testing.T) {
	_, _, err := NewSessionToken("user1", []byte("short"), time.Minute)
	if !errors.Is(err, ErrInvalidSecretLength) {
		t.Errorf("expected ErrInvalidSecretLength, got %v", err)
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, expiry, err := NewSessionToken("user1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}
	if !expiry.After(time.Now()) {
		t.Errorf("expiry %v not in the future", expiry)
	}

	userID, err := ParseSessionToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseSessionToken failed: %v", err)
	}
	if userID != "user1" {
		t.Errorf("expected user1, got %q", userID)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, _, err := NewSessionToken("user1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}

	otherSecret := []byte("another_secret_32_bytes_long_xxx")
	if _, err := ParseSessionToken(token, otherSecret); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	token, _, err := NewSessionToken("user1", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}

	if _, err := ParseSessionToken(token, testSecret); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestSessionTokenTampered(t *testing.T) {
	token, _, err := NewSessionToken("user1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}

	// Flip a character inside the payload segment.
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[2] == 'A' {
		payload[2] = 'B'
	} else {
		payload[2] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := ParseSessionToken(tampered, testSecret); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

// A token minted for one purpose must be rejected by every other verifier,
// even when all verifiers share the same secret.
func TestTokenPurposeIsolation(t *testing.T) {
	session, _, err := NewSessionToken("user1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}
	creation, err := NewCreationToken(PendingUser{Name: "Ada", Email: "ada@example.com"}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewCreationToken failed: %v", err)
	}
	challenge, err := NewChallengeToken("user1", "ada@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewChallengeToken failed: %v", err)
	}
	reset, err := NewPasswordResetToken("user1", "ada@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewPasswordResetToken failed: %v", err)
	}

	testCases := []struct {
		name  string
		token string
		parse func(string) error
	}{
		{"creation token as session", creation, func(tok string) error {
			_, err := ParseSessionToken(tok, testSecret)
			return err
		}},
		{"challenge token as session", challenge, func(tok string) error {
			_, err := ParseSessionToken(tok, testSecret)
			return err
		}},
		{"reset token as session", reset, func(tok string) error {
			_, err := ParseSessionToken(tok, testSecret)
			return err
		}},
		{"session token as creation", session, func(tok string) error {
			_, err := ParseCreationToken(tok, testSecret)
			return err
		}},
		{"session token as challenge", session, func(tok string) error {
			_, _, err := ParseChallengeToken(tok, testSecret)
			return err
		}},
		{"session token as reset", session, func(tok string) error {
			_, _, err := ParsePasswordResetToken(tok, testSecret)
			return err
		}},
		{"challenge token as reset", challenge, func(tok string) error {
			_, _, err := ParsePasswordResetToken(tok, testSecret)
			return err
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.parse(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestCreationTokenRoundTrip(t *testing.T) {
	in := PendingUser{
		Name:       "Ada",
		Email:      "ada@example.com",
		Picture:    "https://example.com/a.png",
		Provider:   "google",
		ProviderID: "g-123",
	}

	token, err := NewCreationToken(in, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewCreationToken failed: %v", err)
	}

	out, err := ParseCreationToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseCreationToken failed: %v", err)
	}
	if *out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", *out, in)
	}
}

func TestCreationTokenUpgrade(t *testing.T) {
	in := PendingUser{
		Name:       "Ada",
		Email:      "ada@example.com",
		Provider:   "google",
		ProviderID: "g-123",
		IsUpgrade:  true,
		UserID:     "user1",
	}

	token, err := NewCreationToken(in, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewCreationToken failed: %v", err)
	}

	out, err := ParseCreationToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseCreationToken failed: %v", err)
	}
	if !out.IsUpgrade {
		t.Error("IsUpgrade flag lost in round trip")
	}
	if out.UserID != "user1" {
		t.Errorf("expected UserID user1, got %q", out.UserID)
	}
}

func TestChallengeTokenRoundTrip(t *testing.T) {
	token, err := NewChallengeToken("user1", "ada@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewChallengeToken failed: %v", err)
	}

	userID, email, err := ParseChallengeToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseChallengeToken failed: %v", err)
	}
	if userID != "user1" || email != "ada@example.com" {
		t.Errorf("got (%q, %q), want (user1, ada@example.com)", userID, email)
	}
}

func TestPasswordResetTokenRoundTrip(t *testing.T) {
	token, err := NewPasswordResetToken("user1", "ada@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewPasswordResetToken failed: %v", err)
	}

	userID, email, err := ParsePasswordResetToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParsePasswordResetToken failed: %v", err)
	}
	if userID != "user1" || email != "ada@example.com" {
		t.Errorf("got (%q, %q), want (user1, ada@example.com)", userID, email)
	}
}

func TestParseJwtGarbage(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ParseJwt(token, testSecret); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
