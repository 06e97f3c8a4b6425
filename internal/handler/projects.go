package handler // handler package contains the project handlers of a profile

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

// ProjectStore persists projects scoped by owner regno.
type ProjectStore interface {
	ListByRegno(ctx context.Context, regno string) ([]model.Project, error)
	Insert(ctx context.Context, p *model.Project) error
	Update(ctx context.Context, id, regno string, patch model.ProjectPatch) error
	Delete(ctx context.Context, id, regno string) error
}

// ProjectHandler serves /profile/projects and /search/profiles/projects.
type ProjectHandler struct {
	Projects ProjectStore
	Log      *zap.Logger
}

func NewProjectHandler(projects ProjectStore, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{Projects: projects, Log: log}
}

type addProjectReq struct {
	ProjectName      string  `json:"projectName"`
	BriefDescription string  `json:"briefDescription"`
	GitHubURL        string  `json:"gitHubUrl"`
	StartMonth       string  `json:"startMonth"`
	StartYear        string  `json:"startYear"`
	EndMonth         *string `json:"endMonth"`
	EndYear          *string `json:"endYear"`
}

type updateProjectReq struct {
	ProjectID string `json:"project_id"`
	model.ProjectPatch
}

type deleteProjectReq struct {
	ProjectID string `json:"project_id"`
}

// List returns every project of the token owner.
func (h *ProjectHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c) // bound the query
	defer cancel()
	projects, err := h.Projects.ListByRegno(ctx, claims(c).Regno) // projects of the profile owner
	if err != nil {
		return internalError(c, h.Log, "list projects", err)
	}
	return ok(c, "Returing all projects", echo.Map{"projects": projects})
}

// Add: POST /profile/projects/add. End time is optional; it is stored only
// when both month and year are given.
func (h *ProjectHandler) Add(c echo.Context) error {
	var req addProjectReq
	if err := c.Bind(&req); err != nil { // malformed body
		return badRequest(c, service.MsgInvalidCredentials)
	}
	if utils.ContainsEmpty(req.ProjectName, req.BriefDescription, req.GitHubURL, req.StartMonth, req.StartYear) {
		return badRequest(c, service.MsgInvalidCredentials) // every field but the end time is required
	}
	p := &model.Project{
		Regno:            claims(c).Regno,
		ProjectName:      req.ProjectName,
		BriefDescription: req.BriefDescription,
		GitHubURL:        req.GitHubURL,
		StartTime:        req.StartMonth + ", " + req.StartYear,
	}
	if end, ok := model.MonthYear(req.EndMonth, req.EndYear); ok {
		p.EndTime = &end
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Projects.Insert(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) { // names are unique per owner
			return badRequest(c, "Project with same name already exists")
		}
		return internalError(c, h.Log, "add project", err)
	}
	return ok(c, "Project Saved", echo.Map{"project_id": p.ID})
}

// Update: POST /profile/projects/update.
func (h *ProjectHandler) Update(c echo.Context) error {
	var req updateProjectReq
	if err := c.Bind(&req); err != nil || req.ProjectID == "" {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	err := h.Projects.Update(ctx, req.ProjectID, claims(c).Regno, req.ProjectPatch)
	switch {
	case err == nil:
		return ok(c, "Project Updated", nil)
	case errors.Is(err, repository.ErrInvalidID):
		return badRequest(c, service.MsgInvalidCredentials)
	case errors.Is(err, repository.ErrNotFound): // missing or owned by someone else
		return badRequest(c, "Project not found")
	case errors.Is(err, repository.ErrDuplicate):
		return badRequest(c, "Project with same name already exists")
	default:
		return internalError(c, h.Log, "update project", err)
	}
}

// Delete: DELETE /profile/projects.
func (h *ProjectHandler) Delete(c echo.Context) error {
	var req deleteProjectReq
	if err := c.Bind(&req); err != nil || req.ProjectID == "" {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	err := h.Projects.Delete(ctx, req.ProjectID, claims(c).Regno)
	switch {
	case err == nil:
		return ok(c, "Project Deleted", nil)
	case errors.Is(err, repository.ErrInvalidID):
		return badRequest(c, service.MsgInvalidCredentials)
	case errors.Is(err, repository.ErrNotFound):
		return badRequest(c, "Project not found")
	default:
		return internalError(c, h.Log, "delete project", err)
	}
}
