package http

import (
	"net/http"

	"srp-backend/internal/domain/authz"
	"srp-backend/internal/usecase/division"

	"github.com/labstack/echo/v4"
)

type DivisionHandler struct{ uc *division.Usecase }

func NewDivisionHandler(uc *division.Usecase) *DivisionHandler { return &DivisionHandler{uc: uc} }

type createDivisionReq struct {
	Name string `json:"name" validate:"required,max=128"`
}

func (h *DivisionHandler) CreateDivision(c echo.Context) error {
	var req createDivisionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	d, err := h.uc.CreateDivision(c.Request().Context(), actor(c), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DivisionHandler) ListDivisions(c echo.Context) error {
	out, err := h.uc.ListDivisions(c.Request().Context(), actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListPermissions returns the acting user's own grants.
func (h *DivisionHandler) ListPermissions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.ListPermissions(actor(c)))
}

func (h *DivisionHandler) AddPermission(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	var req division.PermissionInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	p, err := h.uc.AddPermission(c.Request().Context(), actor(c), id, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *DivisionHandler) RemovePermission(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	var req division.PermissionInput
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if err := h.uc.RemovePermission(c.Request().Context(), actor(c), id, req); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListEntities: GET /divisions/:id/entities?type=review
func (h *DivisionHandler) ListEntities(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	out, err := h.uc.ListEntities(c.Request().Context(), actor(c), id, authz.PermissionType(c.QueryParam("type")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
