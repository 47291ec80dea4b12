package core

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strconv"
)

// codePattern is the wire contract for submitted codes; the verifier rejects
// anything else before touching storage.
var codePattern = regexp.MustCompile(`^\d{4}$`)

// GenerateOTP returns a 4-digit code drawn uniformly from 1000..9999.
// The range excludes leading zeros by construction, so the string form is
// always exactly four digits.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}

// ValidCodeFormat reports whether a submitted code matches the OTP contract.
func ValidCodeFormat(code string) bool { return codePattern.MatchString(code) }
