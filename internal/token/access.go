package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the bundle carried by an access token. Which fields are populated
// depends on the kind:
//
//	UserAccessToken                  firstname, lastname, regno
//	SignUpAccessToken                firstname, lastname, regno, password, encryptedOtp
//	ForgotPasswordAccessToken        firstname, lastname, regno, encryptedOtp
//	ForgotPasswordVerifyAccessToken  firstname, lastname, regno, encryptedOtp
//	SearchAccessToken                _id, firstname, lastname, regno of the found user
type Claims struct {
	UserID       string `json:"_id,omitempty"`
	Firstname    string `json:"firstname"`
	Lastname     string `json:"lastname"`
	Regno        string `json:"regno"`
	Password     string `json:"password,omitempty"`
	EncryptedOTP string `json:"encryptedOtp,omitempty"`
	jwt.RegisteredClaims
}

// AccessCodec signs and verifies kind-scoped access tokens.
// Access tokens carry no expiry; time bounds come from the embedded OTP envelope.
type AccessCodec struct {
	secret string
	now    func() time.Time
}

// NewAccessCodec returns a codec deriving its per-kind keys from secret.
func NewAccessCodec(secret string) (*AccessCodec, error) {
	if secret == "" {
		return nil, errors.New("access token secret must not be empty")
	}
	return &AccessCodec{secret: secret, now: time.Now}, nil
}

// key derives the signing key for kind.
func (c *AccessCodec) key(kind Kind) []byte {
	return []byte(c.secret + "." + string(kind))
}

// Issue signs claims for kind. Registered claims other than iat are cleared so
// a caller cannot smuggle an expiry or audience into the bundle.
func (c *AccessCodec) Issue(claims Claims, kind Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(c.now().UTC()),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.key(kind))
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", kind, err)
	}
	return signed, nil
}

// Open verifies raw against kind and returns its claims. Every failure wraps
// ErrInvalidToken; the wrapped cause is meant for logs only.
func (c *AccessCodec) Open(raw string, kind Kind) (Claims, error) {
	if raw == "" {
		return Claims{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	if !kind.Valid() {
		return Claims{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidToken, kind)
	}
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.key(kind), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
