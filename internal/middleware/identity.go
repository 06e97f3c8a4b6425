package middleware

// identity.go defines the helpers shared across middleware and handlers
// for the verified token stored by RequireToken.  Handlers read the
// claims through TokenClaims; logging and caching use Regno, which falls
// back to "guest" when no token was verified.

import (
	"github.com/labstack/echo/v4"

	"github.com/connectpp/student-network/internal/token"
)

const (
	claimsKey = "token_claims"
	kindKey   = "token_kind"
)

func setClaims(c echo.Context, kind token.Kind, claims token.Claims) {
	c.Set(claimsKey, claims)
	c.Set(kindKey, kind)
}

// TokenClaims returns the claims verified by RequireToken.
func TokenClaims(c echo.Context) (token.Claims, bool) {
	claims, ok := c.Get(claimsKey).(token.Claims)
	return claims, ok
}

// TokenKind returns the kind the request token was verified as.
func TokenKind(c echo.Context) (token.Kind, bool) {
	kind, ok := c.Get(kindKey).(token.Kind)
	return kind, ok
}

// Regno extracts the registration number from the verified token. It
// returns "guest" when no token was verified.
func Regno(c echo.Context) string {
	if claims, ok := TokenClaims(c); ok && claims.Regno != "" {
		return claims.Regno
	}
	return "guest"
}
