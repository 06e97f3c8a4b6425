package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const alphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// OTPLength is the number of characters in a generated one-time code.
const OTPLength = 10

var (
	regnoPattern = regexp.MustCompile(`^[0-9]{9}$`)
	alphaPattern = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// IsValidRegno reports whether r is a registration number: exactly nine ASCII digits.
func IsValidRegno(r string) bool {
	return regnoPattern.MatchString(r)
}

// IsAlpha reports whether s is a non-empty run of ASCII letters.
func IsAlpha(s string) bool {
	return alphaPattern.MatchString(s)
}

// ContainsEmpty reports whether any of the values is the empty string.
func ContainsEmpty(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}

// RandomAlphaNumeric returns n characters drawn uniformly from [A-Za-z0-9]
// using the system CSPRNG.
func RandomAlphaNumeric(n int) (string, error) {
	max := big.NewInt(int64(len(alphaNumeric)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphaNumeric[idx.Int64()]
	}
	return string(buf), nil
}

// NewOTP returns a fresh one-time code.
func NewOTP() (string, error) {
	return RandomAlphaNumeric(OTPLength)
}
