package http

import (
	"net/http"

	"srp-backend/internal/domain/modifier"
	"srp-backend/internal/usecase/ledger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LedgerHandler struct{ uc *ledger.Usecase }

func NewLedgerHandler(uc *ledger.Usecase) *LedgerHandler { return &LedgerHandler{uc: uc} }

type addModifierReq struct {
	Type  string `json:"type" validate:"required,oneof=absolute relative"`
	Value string `json:"value" validate:"required,decimal"`
	Note  string `json:"note"`
}

type basePayoutReq struct {
	BasePayout string `json:"base_payout" validate:"required,decimal"`
}

type modifierResp struct {
	Modifier *ledger.ModifierDTO `json:"modifier"`
	Payout   *ledger.PayoutDTO   `json:"payout"`
}

type ledgerResp struct {
	Modifiers []ledger.ModifierDTO `json:"modifiers"`
	Payout    *ledger.PayoutDTO    `json:"payout"`
}

func (h *LedgerHandler) AddModifier(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	var req addModifierReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	value, _ := decimal.NewFromString(req.Value)
	m, p, err := h.uc.AddModifier(c.Request().Context(), actor(c), id, ledger.AddModifierInput{
		Type:  modifier.Type(req.Type),
		Value: value,
		Note:  req.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, modifierResp{Modifier: m, Payout: p})
}

func (h *LedgerHandler) ListModifiers(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	mods, p, err := h.uc.ListModifiers(c.Request().Context(), actor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ledgerResp{Modifiers: mods, Payout: p})
}

func (h *LedgerHandler) VoidModifier(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	modifierID := c.Param("modifier_id")
	if modifierID == "" {
		return badPath(c, "modifier_id")
	}
	p, err := h.uc.VoidModifier(c.Request().Context(), actor(c), id, modifierID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *LedgerHandler) SetBasePayout(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	var req basePayoutReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	value, _ := decimal.NewFromString(req.BasePayout)
	p, err := h.uc.SetBasePayout(c.Request().Context(), actor(c), id, value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
