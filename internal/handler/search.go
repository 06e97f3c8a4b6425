package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/connectpp/student-network/internal/service"
)

// SearchHandler serves /search/text-match. Profile reads of a found user
// go through ProfileHandler behind a SearchAccessToken gate.
type SearchHandler struct {
	Search *service.SearchService
	Log    *zap.Logger
}

func NewSearchHandler(search *service.SearchService, log *zap.Logger) *SearchHandler {
	return &SearchHandler{Search: search, Log: log}
}

// GetAll: GET /search/text-match/get-all.
func (h *SearchHandler) GetAll(c echo.Context) error {
	users, err := h.Search.ListUsers(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return ok(c, service.MsgReturningAllUser, echo.Map{"users": users})
}

// ByFullname: GET /search/text-match/user/fullname?fullname=...
func (h *SearchHandler) ByFullname(c echo.Context) error {
	tok, err := h.Search.SearchByFullname(c.Request().Context(), c.QueryParam("fullname"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return ok(c, service.MsgUserFound, echo.Map{"searchAccessToken": tok})
}

// ByRegno: GET /search/text-match/user/regno?regno=...
func (h *SearchHandler) ByRegno(c echo.Context) error {
	tok, err := h.Search.SearchByRegno(c.Request().Context(), c.QueryParam("regno"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return ok(c, service.MsgUserFound, echo.Map{"searchAccessToken": tok})
}
