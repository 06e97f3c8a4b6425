package router // package router defines how HTTP routes are registered for the API

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/connectpp/student-network/internal/handler"
	"github.com/connectpp/student-network/internal/middleware"
	"github.com/connectpp/student-network/internal/token"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Auth     *handler.AuthHandler
	Profile  *handler.ProfileHandler
	Projects *handler.ProjectHandler
	Tech     *handler.TechHandler
	Search   *handler.SearchHandler

	// Access verifies every gated route.
	Access *token.AccessCodec
	// SearchCache wraps the /search/profiles reads; nil means no caching.
	SearchCache echo.MiddlewareFunc
	// DB backs /readyz when set.
	DB handler.Pinger
}

// New returns an Echo instance with the shared middleware, the error
// handler and every route registered.
func New(h Handlers, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(echomw.Recover())
	e.Use(RequestLogger(log))

	RegisterRoutes(e, h)
	RegisterAuth(e, h)
	RegisterProfile(e, h)
	RegisterSearch(e, h)
	return e
}

// RegisterRoutes registers routes that do not require a token: the
// liveness probe and, when a database is wired, the readiness probe.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
	if h.DB != nil {
		e.GET("/readyz", handler.Ready(h.DB))
	}
}

// RegisterAuth registers the sign-up, login and forgot-password flows.
// The first step of each flow is open; the follow-up steps carry the
// token issued by the previous step in their JSON body.
func RegisterAuth(e *echo.Echo, h Handlers) {
	g := e.Group("/auth")
	g.POST("/sign-up", h.Auth.SignUp)
	g.POST("/sign-up/verify", h.Auth.VerifySignUp,
		middleware.RequireToken(h.Access, token.SignUpAccessToken, middleware.FromBody))
	g.POST("/login", h.Auth.Login)
	g.POST("/forgot-password", h.Auth.ForgotPassword)
	g.POST("/forgot-password/verify", h.Auth.VerifyForgotPassword,
		middleware.RequireToken(h.Access, token.ForgotPasswordAccessToken, middleware.FromBody))
	g.POST("/forgot-password/update", h.Auth.UpdatePassword,
		middleware.RequireToken(h.Access, token.ForgotPasswordVerifyAccessToken, middleware.FromBody))
}

// ErrorHandler renders framework errors with the JSON envelope used by the
// handlers.  Unknown routes and unsupported methods both answer 404.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := "Internal Server Error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			switch he.Code {
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				code, message = http.StatusNotFound, "This route does not exist"
			default:
				code = he.Code
				if m, ok := he.Message.(string); ok {
					message = m
				} else {
					message = http.StatusText(he.Code)
				}
			}
		} else {
			log.Error("unhandled error",
				zap.String("route", c.Path()),
				zap.String("method", c.Request().Method),
				zap.Error(err),
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, echo.Map{"status": false, "message": message})
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}

// RequestLogger logs one line per request through zap.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:     true,
		LogMethod:  true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("regno", middleware.Regno(c)),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
