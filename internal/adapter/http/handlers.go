package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Handlers groups everything Register mounts.
type Handlers struct {
	Health    *Handler
	Requests  *RequestHandler
	Ledger    *LedgerHandler
	Divisions *DivisionHandler
}

// Register mounts the API on e. mutating wraps every route that changes state,
// normally the idempotency middleware.
func (h Handlers) Register(e *echo.Echo, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	e.POST("/killmails", h.Requests.RegisterKillmail, mutating...)

	e.POST("/requests", h.Requests.Submit, mutating...)
	e.POST("/requests/search", h.Requests.Search)
	e.GET("/requests/personal", h.Requests.ListPersonal)
	e.GET("/requests/review", h.Requests.ListReview)
	e.GET("/requests/pay", h.Requests.ListPay)
	e.GET("/requests/all", h.Requests.ListAll)
	e.GET("/requests/:id", h.Requests.Get)
	e.POST("/requests/:id/actions", h.Requests.ApplyAction, mutating...)
	e.PUT("/requests/:id/details", h.Requests.ChangeDetails, mutating...)
	e.PUT("/requests/:id/division", h.Requests.ChangeDivision, mutating...)

	e.PUT("/requests/:id/base-payout", h.Ledger.SetBasePayout, mutating...)
	e.GET("/requests/:id/modifiers", h.Ledger.ListModifiers)
	e.POST("/requests/:id/modifiers", h.Ledger.AddModifier, mutating...)
	e.POST("/requests/:id/modifiers/:modifier_id/void", h.Ledger.VoidModifier, mutating...)

	e.GET("/permissions", h.Divisions.ListPermissions)
	e.GET("/divisions", h.Divisions.ListDivisions)
	e.POST("/divisions", h.Divisions.CreateDivision, mutating...)
	e.GET("/divisions/:id/entities", h.Divisions.ListEntities)
	e.POST("/divisions/:id/permissions", h.Divisions.AddPermission, mutating...)
	e.DELETE("/divisions/:id/permissions", h.Divisions.RemovePermission, mutating...)
}
