// Package token issues and opens the signed envelopes that carry every step of
// the authentication flows. There is no server-side session: which step a client
// has completed is encoded by the kind a token was signed for.
package token

import "errors"

// Kind scopes an access token to one purpose. The kind is mixed into the signing
// key, so a token signed for one kind never verifies as another.
type Kind string

const (
	UserAccessToken                 Kind = "UserAccessToken"
	SignUpAccessToken               Kind = "SignUpAccessToken"
	ForgotPasswordAccessToken       Kind = "ForgotPasswordAccessToken"
	ForgotPasswordVerifyAccessToken Kind = "ForgotPasswordVerifyAccessToken"
	SearchAccessToken               Kind = "SearchAccessToken"
)

// Kinds lists every kind the service issues.
var Kinds = []Kind{
	UserAccessToken,
	SignUpAccessToken,
	ForgotPasswordAccessToken,
	ForgotPasswordVerifyAccessToken,
	SearchAccessToken,
}

func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ErrInvalidToken is returned for any token or OTP envelope that fails to open:
// bad signature, wrong kind, expired, malformed or empty.
var ErrInvalidToken = errors.New("invalid token")
