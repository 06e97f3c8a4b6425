package handler

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/connectpp/student-network/internal/model"
	"github.com/connectpp/student-network/internal/repository"
	"github.com/connectpp/student-network/internal/service"
)

// Profile messages.
const (
	msgReturningPublic      = "Returning Public Profile"
	msgReturningProgramming = "Returning User Programming Profile"
	msgProfileUpdated       = "Profile Updated"
)

// PublicProfileStore persists public profiles.
type PublicProfileStore interface {
	FindByRegno(ctx context.Context, regno string) (model.PublicProfile, error)
	Insert(ctx context.Context, p model.PublicProfile) error
	Upsert(ctx context.Context, seed model.PublicProfile, patch model.PublicProfilePatch) error
}

// ProgrammingProfileStore persists programming profiles.
type ProgrammingProfileStore interface {
	FindByRegno(ctx context.Context, regno string) (model.ProgrammingProfile, error)
	Upsert(ctx context.Context, regno string, patch model.ProgrammingProfilePatch) error
}

// ProfileHandler serves the public and programming profiles.  The same
// read handlers answer /profile (UserAccessToken, own profile) and
// /search/profiles (SearchAccessToken, the found user's profile): both
// tokens carry the regno and names of the profile owner.
type ProfileHandler struct {
	Public      PublicProfileStore
	Programming ProgrammingProfileStore
	Log         *zap.Logger
}

func NewProfileHandler(pub PublicProfileStore, prog ProgrammingProfileStore, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{Public: pub, Programming: prog, Log: log}
}

// GetPublic returns the public profile, creating it from the token
// identity on first read.
func (h *ProfileHandler) GetPublic(c echo.Context) error {
	id := claims(c)
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Public.FindByRegno(ctx, id.Regno)
	if errors.Is(err, repository.ErrNotFound) {
		if searched(c) {
			h.Log.Warn("searched user with no public profile", zap.String("regno", id.Regno))
		}
		p = model.PublicProfile{Firstname: id.Firstname, Lastname: id.Lastname, Regno: id.Regno}
		err = h.Public.Insert(ctx, p)
		if errors.Is(err, repository.ErrDuplicate) {
			// created by a concurrent first read
			p, err = h.Public.FindByRegno(ctx, id.Regno)
		}
	}
	if err != nil {
		return internalError(c, h.Log, "get public profile", err)
	}
	return ok(c, msgReturningPublic, echo.Map{"profile": p})
}

// UpdatePublic: POST /profile/public. Absent or empty fields are left unchanged.
func (h *ProfileHandler) UpdatePublic(c echo.Context) error {
	var patch model.PublicProfilePatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	id := claims(c)
	ctx, cancel := requestCtx(c)
	defer cancel()

	seed := model.PublicProfile{Firstname: id.Firstname, Lastname: id.Lastname, Regno: id.Regno}
	if err := h.Public.Upsert(ctx, seed, patch); err != nil {
		return internalError(c, h.Log, "update public profile", err)
	}
	return ok(c, msgProfileUpdated, nil)
}

// GetProgramming returns the programming profile, or an empty object
// when none was written yet.
func (h *ProfileHandler) GetProgramming(c echo.Context) error {
	id := claims(c)
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Programming.FindByRegno(ctx, id.Regno)
	if errors.Is(err, repository.ErrNotFound) {
		if searched(c) {
			h.Log.Warn("searched user with no programming profile", zap.String("regno", id.Regno))
		}
		return ok(c, msgReturningProgramming, echo.Map{"profile": echo.Map{}})
	}
	if err != nil {
		return internalError(c, h.Log, "get programming profile", err)
	}
	return ok(c, msgReturningProgramming, echo.Map{"profile": p})
}

// UpdateProgramming: POST /profile/programming, upserted on first write.
func (h *ProfileHandler) UpdateProgramming(c echo.Context) error {
	var patch model.ProgrammingProfilePatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, service.MsgInvalidCredentials)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Programming.Upsert(ctx, claims(c).Regno, patch); err != nil {
		return internalError(c, h.Log, "update programming profile", err)
	}
	return ok(c, msgProfileUpdated, nil)
}
