package crypto

import (
	"strings"
	"testing"
)

func TestRandomStringLengthAndAlphabet(t *testing.T) {
	for _, length := range []int{1, 6, 32} {
		s := RandomString(length, AlphanumericAlphabet)
		if len(s) != length {
			t.Errorf("length %d: got %d characters", length, len(s))
		}
		for _, c := range s {
			if !strings.ContainsRune(AlphanumericAlphabet, c) {
				t.Errorf("character %q outside alphabet", c)
			}
		}
	}
}

func TestRandomStringPanicsOnBadInput(t *testing.T) {
	assertPanics := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}

	assertPanics("zero length", func() { RandomString(0, AlphanumericAlphabet) })
	assertPanics("empty alphabet", func() { RandomString(8, "") })
}

func TestOtpCode(t *testing.T) {
	code := OtpCode()
	if len(code) != OtpCodeLength {
		t.Fatalf("expected %d digits, got %q", OtpCodeLength, code)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			t.Errorf("non-digit character %q in code %q", c, code)
		}
	}
}
