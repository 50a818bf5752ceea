package http

import (
	"net/http"
	"time"

	domainRequest "srp-backend/internal/domain/request"
	"srp-backend/internal/domain/search"
	"srp-backend/internal/usecase/browse"
	"srp-backend/internal/usecase/request"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type RequestHandler struct {
	uc     *request.Usecase
	browse *browse.Usecase
}

func NewRequestHandler(uc *request.Usecase, b *browse.Usecase) *RequestHandler {
	return &RequestHandler{uc: uc, browse: b}
}

type submitReq struct {
	DivisionID uint64 `json:"division_id" validate:"required"`
	KillmailID uint64 `json:"killmail_id" validate:"required"`
	Details    string `json:"details" validate:"required"`
}

type killmailReq struct {
	ID              uint64    `json:"id" validate:"required"`
	UserID          uint64    `json:"user_id" validate:"required"`
	PilotID         uint64    `json:"pilot_id" validate:"required"`
	PilotName       string    `json:"pilot_name" validate:"max=100"`
	CorporationID   uint64    `json:"corporation_id" validate:"required"`
	AllianceID      uint64    `json:"alliance_id"`
	SystemID        uint64    `json:"system_id" validate:"required"`
	ConstellationID uint64    `json:"constellation_id"`
	RegionID        uint64    `json:"region_id"`
	TypeID          uint64    `json:"type_id" validate:"required"`
	TypeName        string    `json:"type_name" validate:"max=100"`
	Value           string    `json:"value" validate:"required,decimal"`
	URL             string    `json:"url" validate:"omitempty,url,max=512"`
	Timestamp       time.Time `json:"timestamp" validate:"required"`
}

type actionReq struct {
	Type string `json:"type" validate:"required,oneof=evaluating approved paid rejected incomplete comment"`
	Note string `json:"note"`
}

type detailsReq struct {
	Details string `json:"details" validate:"required"`
}

type divisionReq struct {
	DivisionID uint64 `json:"division_id" validate:"required"`
}

// RegisterKillmail records a loss on behalf of user_id, who can then file a request for it.
func (h *RequestHandler) RegisterKillmail(c echo.Context) error {
	var req killmailReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	value, _ := decimal.NewFromString(req.Value)
	km, err := h.uc.RegisterKillmail(c.Request().Context(), actor(c), domainRequest.Killmail{
		ID:              req.ID,
		UserID:          req.UserID,
		PilotID:         req.PilotID,
		PilotName:       req.PilotName,
		CorporationID:   req.CorporationID,
		AllianceID:      req.AllianceID,
		SystemID:        req.SystemID,
		ConstellationID: req.ConstellationID,
		RegionID:        req.RegionID,
		TypeID:          req.TypeID,
		TypeName:        req.TypeName,
		Value:           value,
		URL:             req.URL,
		Timestamp:       req.Timestamp,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, km)
}

func (h *RequestHandler) Submit(c echo.Context) error {
	var req submitReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Submit(c.Request().Context(), actor(c), request.SubmitInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *RequestHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	dto, err := h.uc.Get(c.Request().Context(), actor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) ApplyAction(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	var req actionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ApplyAction(c.Request().Context(), actor(c), id, domainRequest.ActionType(req.Type), req.Note)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *RequestHandler) ChangeDetails(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	var req detailsReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ChangeDetails(c.Request().Context(), actor(c), id, req.Details)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) ChangeDivision(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badPath(c, "id")
	}
	var req divisionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ChangeDivision(c.Request().Context(), actor(c), id, req.DivisionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Search runs an arbitrary search over everything the actor may see in full,
// which is the same scope as the "all" listing.
func (h *RequestHandler) Search(c echo.Context) error {
	var req searchReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	s, err := req.toSearch()
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.browse.ListAll(c.Request().Context(), actor(c), s)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type lister func(c echo.Context, s *search.Search) ([]request.RequestDTO, error)

func (h *RequestHandler) list(fn lister) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := querySearch(c.QueryParams())
		if err != nil {
			return writeError(c, err)
		}
		out, err := fn(c, s)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (h *RequestHandler) ListPersonal(c echo.Context) error {
	return h.list(func(c echo.Context, s *search.Search) ([]request.RequestDTO, error) {
		return h.browse.ListPersonal(c.Request().Context(), actor(c), s)
	})(c)
}

func (h *RequestHandler) ListReview(c echo.Context) error {
	return h.list(func(c echo.Context, s *search.Search) ([]request.RequestDTO, error) {
		return h.browse.ListReview(c.Request().Context(), actor(c), s)
	})(c)
}

func (h *RequestHandler) ListPay(c echo.Context) error {
	return h.list(func(c echo.Context, s *search.Search) ([]request.RequestDTO, error) {
		return h.browse.ListPay(c.Request().Context(), actor(c), s)
	})(c)
}

func (h *RequestHandler) ListAll(c echo.Context) error {
	return h.list(func(c echo.Context, s *search.Search) ([]request.RequestDTO, error) {
		return h.browse.ListAll(c.Request().Context(), actor(c), s)
	})(c)
}
