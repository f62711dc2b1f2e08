package domain

import "strings"

const (
	countryCode       = "965"
	localNumberDigits = 8
)

// NormalizePhone reduces a phone number to its local digits so that
// "+965 5555-1234", "00965 55551234" and "55551234" compare equal.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	digits = strings.TrimPrefix(digits, "00")
	if len(digits) > localNumberDigits && strings.HasPrefix(digits, countryCode) {
		digits = digits[len(countryCode):]
	}
	return digits
}

// SamePhone reports whether two phone numbers normalize to the same non-empty value.
func SamePhone(a, b string) bool {
	na := NormalizePhone(a)
	return na != "" && na == NormalizePhone(b)
}
