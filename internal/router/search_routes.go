package router

import (
	"github.com/labstack/echo/v4"

	"github.com/connectpp/student-network/internal/middleware"
	"github.com/connectpp/student-network/internal/token"
)

// RegisterSearch registers user search and the read-only view of a found
// user's profile.  Text-match routes need a UserAccessToken and mint a
// SearchAccessToken; /search/profiles reads are gated by that token and
// optionally cached in Redis.
func RegisterSearch(e *echo.Echo, h Handlers) {
	// Gates are attached per route: group middleware would also guard the
	// group's catch-all and turn unknown paths into token errors.
	user := middleware.RequireToken(h.Access, token.UserAccessToken, middleware.FromQuery)
	text := e.Group("/search/text-match")
	text.GET("/get-all", h.Search.GetAll, user)
	text.GET("/user/fullname", h.Search.ByFullname, user)
	text.GET("/user/regno", h.Search.ByRegno, user)

	gates := []echo.MiddlewareFunc{
		middleware.RequireToken(h.Access, token.SearchAccessToken, middleware.FromQuery),
	}
	// the cache runs after the gate so the key can include the searched regno
	if h.SearchCache != nil {
		gates = append(gates, h.SearchCache)
	}
	found := e.Group("/search/profiles")
	found.GET("/public", h.Profile.GetPublic, gates...)
	found.GET("/programming", h.Profile.GetProgramming, gates...)
	found.GET("/projects", h.Projects.List, gates...)
	found.GET("/tech", h.Tech.List, gates...)
}
