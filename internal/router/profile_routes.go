package router

import (
	"github.com/labstack/echo/v4"

	"github.com/connectpp/student-network/internal/middleware"
	"github.com/connectpp/student-network/internal/token"
)

// RegisterProfile registers the profile endpoints of the token owner under
// /profile.  Reads take the UserAccessToken from the query string; writes
// and deletes carry it in the JSON body.
func RegisterProfile(e *echo.Echo, h Handlers) {
	read := middleware.RequireToken(h.Access, token.UserAccessToken, middleware.FromQuery)
	write := middleware.RequireToken(h.Access, token.UserAccessToken, middleware.FromBody)

	g := e.Group("/profile")
	g.GET("/public", h.Profile.GetPublic, read)
	g.POST("/public", h.Profile.UpdatePublic, write)
	g.GET("/programming", h.Profile.GetProgramming, read)
	g.POST("/programming", h.Profile.UpdateProgramming, write)

	g.GET("/projects", h.Projects.List, read)
	g.POST("/projects/add", h.Projects.Add, write)
	g.POST("/projects/update", h.Projects.Update, write)
	g.DELETE("/projects", h.Projects.Delete, write)

	g.GET("/tech", h.Tech.List, read)
	g.POST("/tech/add", h.Tech.Add, write)
	g.POST("/tech/update", h.Tech.Update, write)
	g.DELETE("/tech", h.Tech.Delete, write)
}
