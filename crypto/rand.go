package crypto

import (
	"crypto/rand"
	"math/big"
)

const (
	AlphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	DigitsAlphabet       = "0123456789"

	// OtpCodeLength is the fixed length of one-time passcodes sent by email.
	OtpCodeLength = 6
)

// RandomString returns a cryptographically secure random string of the given
// length using only characters from the alphabet. Each character is drawn
// uniformly; panics on an empty alphabet or a non-positive length.
func RandomString(length int, alphabet string) string {
	if length <= 0 {
		panic("length must be positive")
	}
	if alphabet == "" {
		panic("alphabet must not be empty")
	}

	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// rand.Reader failing means the platform's entropy source is broken
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// OtpCode returns a fresh numeric one-time passcode. Uniform over the full
// digit range, leading zeros included.
func OtpCode() string {
	return RandomString(OtpCodeLength, DigitsAlphabet)
}
