// Package isbn handles the ISBN-13 text format: 12 body digits followed by a
// check digit.
package isbn

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// Length is the number of digits in an ISBN-13.
	Length = 13

	// MaxBody is the largest 12-digit body.
	MaxBody uint64 = 999_999_999_999
)

// ErrInvalidFormat is returned for identifiers that are not 13 ASCII digits.
var ErrInvalidFormat = errors.New("isbn: invalid identifier format")

// Parse validates s and returns its 12-digit body with the check digit stripped.
// The check digit itself is not verified.
func Parse(s string) (uint64, error) {
	if len(s) != Length {
		return 0, fmt.Errorf("%w: %q has %d characters, want %d", ErrInvalidFormat, s, len(s), Length)
	}

	var body uint64
	for i := 0; i < Length; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q contains non-digit %q", ErrInvalidFormat, s, c)
		}
		if i < Length-1 {
			body = body*10 + uint64(c-'0')
		}
	}
	return body, nil
}

// CheckDigit13 computes the ISBN-13 check digit of a 12-digit body.
func CheckDigit13(body uint64) byte {
	sum := 0
	for i := 0; i < Length-1; i++ {
		d := int(body % 10)
		body /= 10
		// rightmost body digit has weight 3
		if i%2 == 0 {
			sum += 3 * d
		} else {
			sum += d
		}
	}
	return byte('0' + (10-sum%10)%10)
}

// Format renders body as a full ISBN-13, appending its check digit.
func Format(body uint64) string {
	buf := make([]byte, 0, Length)
	s := strconv.FormatUint(body, 10)
	for i := len(s); i < Length-1; i++ {
		buf = append(buf, '0')
	}
	buf = append(buf, s...)
	return string(append(buf, CheckDigit13(body)))
}

// Valid reports whether s is well formed and carries the correct check digit.
func Valid(s string) bool {
	body, err := Parse(s)
	if err != nil {
		return false
	}
	return s[Length-1] == CheckDigit13(body)
}
