package middleware // middleware provides shared request processing for handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/connectpp/student-network/internal/token"
)

// Source tells RequireToken where a request carries its token.
type Source int

const (
	// FromBody reads the "token" field of a JSON body (mutating calls).
	FromBody Source = iota
	// FromQuery reads the "token" query parameter (reads).
	FromQuery
)

// maxPeekBytes bounds how much of a body is buffered to find the token.
const maxPeekBytes = 1 << 20

// RequireToken returns an Echo middleware that opens the request token as
// kind and stores its claims in the context for TokenClaims.  A request
// without a token is rejected with 400 "Invalid Credentials"; a token that
// does not open under kind (wrong kind, bad signature, malformed) with 400
// "Invalid Token".  When the primary source is empty an Authorization
// Bearer header is accepted as well.
func RequireToken(codec *token.AccessCodec, kind token.Kind, src Source) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			switch src {
			case FromQuery:
				raw = c.QueryParam("token")
			default:
				raw = bodyToken(c.Request())
			}
			if raw == "" {
				if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
					raw = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
				}
			}
			if raw == "" {
				return c.JSON(http.StatusBadRequest, echo.Map{"status": false, "message": "Invalid Credentials"})
			}

			claims, err := codec.Open(raw, kind)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"status": false, "message": "Invalid Token"})
			}
			setClaims(c, kind, claims)
			return next(c)
		}
	}
}

// bodyToken peeks the "token" field of a JSON body and restores the body
// so the handler can bind it again.  At most maxPeekBytes are buffered; the
// rest is left unread behind the buffered prefix.  A token that does not
// fit in the prefix is not found.
func bodyToken(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
	if err != nil || len(buf) == 0 {
		return ""
	}
	var peek struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(buf, &peek); err != nil {
		return ""
	}
	return peek.Token
}

// readCloser reads the restored body and closes the original one.
type readCloser struct {
	io.Reader
	io.Closer
}
