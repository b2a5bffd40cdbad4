package security

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
)

// GenerateNumericCode returns a uniformly random numeric string of the given length.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	digits := make([]byte, length)
	buf := make([]byte, 1)
	for i := 0; i < length; {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		// Reject values that would bias the modulo toward low digits.
		if buf[0] >= 250 {
			continue
		}
		digits[i] = '0' + (buf[0] % 10)
		i++
	}

	return string(digits), nil
}

// ConstantTimeEquals compares two short secrets without leaking a timing
// signal on mismatch position.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
