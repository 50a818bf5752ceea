package http

import (
	"net/http"
	"strconv"

	"srp-backend/internal/adapter/middleware"
	"srp-backend/internal/domain/apperr"
	"srp-backend/internal/domain/authz"

	"github.com/labstack/echo/v4"
)

// ---- helpers ----

var statusByKind = map[string]int{
	"invalid_transition": http.StatusConflict,
	"request_status":     http.StatusConflict,
	"already_voided":     http.StatusConflict,
	"permission":         http.StatusForbidden,
	"not_found":          http.StatusNotFound,
	"validation":         http.StatusUnprocessableEntity,
	"invalid_filter":     http.StatusUnprocessableEntity,
}

// writeError maps usecase errors to HTTP codes. Anything outside the
// apperr taxonomy is a 500 and its message is not leaked.
func writeError(c echo.Context, err error) error {
	code, ok := statusByKind[apperr.Kind(err)]
	if !ok {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	if code == http.StatusForbidden && actor(c).Anonymous() {
		code = http.StatusUnauthorized
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// bindValid binds the JSON body into req and validates it. On failure the
// response is already written and ok is false.
func bindValid(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func badPath(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + " path param"})
}

func actor(c echo.Context) *authz.Principal { return middleware.Actor(c) }
