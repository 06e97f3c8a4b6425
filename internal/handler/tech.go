package handler

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/connectpp/student-network/internal/model"
	"github.com/connectpp/student-network/internal/repository"
	"github.com/connectpp/student-network/internal/service"
	"github.com/connectpp/student-network/internal/utils"
)

// TechStore persists techs scoped by owner regno.
type TechStore interface {
	ListByRegno(ctx context.Context, regno string) ([]model.Tech, error)
	Insert(ctx context.Context, t *model.Tech) error
	Update(ctx context.Context, id, regno string, patch model.TechPatch) error
	Delete(ctx context.Context, id, regno string) error
}

// TechHandler serves /profile/tech and /search/profiles/tech.
type TechHandler struct {
	Techs TechStore
	Log   *zap.Logger
}

func NewTechHandler(techs TechStore, log *zap.Logger) *TechHandler {
	return &TechHandler{Techs: techs, Log: log}
}

type addTechReq struct {
	TechName     string `json:"techName"`
	LearningYear string `json:"learningYear"`
	StillUseIt   *bool  `json:"stillUseIt"`
	Level        *int   `json:"level"`
	SourceName   string `json:"sourceName"`
	SourceURL    string `json:"sourceUrl"`
}

type updateTechReq struct {
	TechID string `json:"tech_id"`
	model.TechPatch
}

type deleteTechReq struct {
	TechID string `json:"tech_id"`
}

func (h *TechHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	techs, err := h.Techs.ListByRegno(ctx, claims(c).Regno)
	if err != nil {
		return internalError(c, h.Log, "list techs", err)
	}
	return ok(c, "Returning all Techs", echo.Map{"techs": techs})
}

// Add: POST /profile/tech/add. Every field is required; stillUseIt=false
// and level=0 are valid values.
func (h *TechHandler) Add(c echo.Context) error {
	var req addTechReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	if utils.ContainsEmpty(req.TechName, req.LearningYear, req.SourceName, req.SourceURL) ||
		req.StillUseIt == nil || req.Level == nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	t := &model.Tech{
		Regno:        claims(c).Regno,
		TechName:     req.TechName,
		LearningYear: req.LearningYear,
		StillUseIt:   *req.StillUseIt,
		Level:        *req.Level,
		SourceName:   req.SourceName,
		SourceURL:    req.SourceURL,
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Techs.Insert(ctx, t); err != nil {
		return internalError(c, h.Log, "add tech", err)
	}
	return ok(c, "Tech saved", echo.Map{"tech_id": t.ID})
}

func (h *TechHandler) Update(c echo.Context) error {
	var req updateTechReq
	if err := c.Bind(&req); err != nil || req.TechID == "" {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	err := h.Techs.Update(ctx, req.TechID, claims(c).Regno, req.TechPatch)
	switch {
	case err == nil:
		return ok(c, "Tech Updated", nil)
	case errors.Is(err, repository.ErrInvalidID):
		return badRequest(c, service.MsgInvalidCredentials)
	case errors.Is(err, repository.ErrNotFound):
		return badRequest(c, "Tech not found")
	default:
		return internalError(c, h.Log, "update tech", err)
	}
}

func (h *TechHandler) Delete(c echo.Context) error {
	var req deleteTechReq
	if err := c.Bind(&req); err != nil || req.TechID == "" {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	err := h.Techs.Delete(ctx, req.TechID, claims(c).Regno)
	switch {
	case err == nil:
		return ok(c, "Tech Deleted", nil)
	case errors.Is(err, repository.ErrInvalidID):
		return badRequest(c, service.MsgInvalidCredentials)
	case errors.Is(err, repository.ErrNotFound):
		return badRequest(c, "Tech not found")
	default:
		return internalError(c, h.Log, "delete tech", err)
	}
}
