package core

import "strings"

// Indian mobile numbers: 10 digits, first digit 6-9, dialed with the 91
// calling code. NormalizePhone accepts whatever the user typed ("098765...",
// "+91 98765-43210", "9876543210") and canonicalizes to "91" + 10 digits.
const (
	callingCode     = "91"
	subscriberLen   = 10
	normalizedLen   = 12
	mobileFirstDigs = "6789"
)

// NormalizePhone canonicalizes a user-entered phone string to the 12-digit
// "91XXXXXXXXXX" form. It is deterministic and side-effect free.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// A single leading trunk zero is noise ("09876543210").
	digits = strings.TrimPrefix(digits, "0")

	// Already dialed with the calling code.
	if len(digits) == normalizedLen && strings.HasPrefix(digits, callingCode) {
		digits = digits[len(callingCode):]
	}

	if len(digits) != subscriberLen {
		return "", &PhoneFormatError{Reason: "must be a 10-digit mobile number"}
	}
	if !strings.ContainsRune(mobileFirstDigs, rune(digits[0])) {
		return "", &PhoneFormatError{Reason: "mobile numbers start with 6, 7, 8 or 9"}
	}
	return callingCode + digits, nil
}
