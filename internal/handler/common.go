package handler // handler defines http handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/connectpp/student-network/internal/middleware"
	"github.com/connectpp/student-network/internal/service"
	"github.com/connectpp/student-network/internal/token"
)

// dbTimeout bounds every repository call made directly by a handler.
const dbTimeout = 5 * time.Second

// Every response is a JSON object with a boolean "status" and a
// human-readable "message"; payload fields sit next to them.

// ok writes a 200 envelope with the given payload fields.
func ok(c echo.Context, message string, fields echo.Map) error {
	body := echo.Map{"status": true, "message": message}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// fail writes an error envelope.
func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, echo.Map{"status": false, "message": message})
}

// badRequest writes a 400 envelope.
func badRequest(c echo.Context, message string) error {
	return fail(c, http.StatusBadRequest, message)
}

// internalError logs err with the operation, route and method and answers
// with the sanitized 500 envelope.
func internalError(c echo.Context, log *zap.Logger, op string, err error) error {
	log.Error("request failed",
		zap.String("op", op),
		zap.String("route", c.Path()),
		zap.String("method", c.Request().Method),
		zap.String("regno", middleware.Regno(c)),
		zap.Error(err),
	)
	return fail(c, http.StatusInternalServerError, service.MsgInternal)
}

// writeError maps a service error onto the response: client kinds are 400
// with their message, infrastructure kinds are logged and become 500.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	e, isSvc := service.AsError(err)
	if !isSvc {
		return internalError(c, log, "unclassified error", err)
	}
	if e.Kind.Internal() {
		op := e.Op
		if op == "" {
			op = string(e.Kind)
		}
		return internalError(c, log, op, e.Err)
	}
	return badRequest(c, e.Message)
}

// claims returns the verified token claims of the request.  Routes are
// always registered behind RequireToken, so a miss is a wiring error.
func claims(c echo.Context) token.Claims {
	cl, _ := middleware.TokenClaims(c)
	return cl
}

// searched reports whether the request was authorised by a SearchAccessToken,
// i.e. the caller reads somebody else's profile.
func searched(c echo.Context) bool {
	kind, _ := middleware.TokenKind(c)
	return kind == token.SearchAccessToken
}

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}
