package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OTPTTL is the lifetime of an OTP envelope.
const OTPTTL = 24 * time.Hour

type otpClaims struct {
	OTP string `json:"otp"`
	jwt.RegisteredClaims
}

// OTPCodec wraps one-time codes in short-lived envelopes signed with a key
// separate from the access-token secret.
type OTPCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewOTPCodec returns a codec signing with secret.
func NewOTPCodec(secret string) (*OTPCodec, error) {
	if secret == "" {
		return nil, errors.New("otp secret must not be empty")
	}
	return &OTPCodec{key: []byte(secret), ttl: OTPTTL, now: time.Now}, nil
}

// Issue returns an envelope for code that expires after OTPTTL.
func (c *OTPCodec) Issue(code string) (string, error) {
	now := c.now().UTC()
	claims := otpClaims{
		OTP: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign otp: %w", err)
	}
	return signed, nil
}

// Open verifies envelope and returns the code inside. Expired, tampered or
// malformed envelopes wrap ErrInvalidToken.
func (c *OTPCodec) Open(envelope string) (string, error) {
	if envelope == "" {
		return "", fmt.Errorf("%w: empty otp envelope", ErrInvalidToken)
	}
	var claims otpClaims
	tok, err := jwt.ParseWithClaims(envelope, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return "", ErrInvalidToken
	}
	// Envelopes minted with a longer lifetime are still capped at the codec's ttl.
	if claims.IssuedAt != nil && c.now().Sub(claims.IssuedAt.Time) > c.ttl {
		return "", fmt.Errorf("%w: otp older than %s", ErrInvalidToken, c.ttl)
	}
	return claims.OTP, nil
}
