package request

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/domain/hospital"
	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/platform/auth"
	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/platform/db"
	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Lifecycle actions need a hospital identity; admins can read but not
	// act as a requesting or providing party.
	hospitalOnly := auth.RequireHospital()

	api.POST("/requests", h.Create, hospitalOnly)
	api.GET("/requests", h.List)
	api.GET("/requests/:id", h.Get)
	api.POST("/requests/:id/accept", h.Accept, hospitalOnly)
	api.POST("/requests/:id/reject", h.Reject, hospitalOnly)
	api.DELETE("/requests/:id", h.Cancel, hospitalOnly)
	api.POST("/requests/:id/finalize", h.Finalize, hospitalOnly)
}

// errorResponse translates lifecycle errors into stable API error codes.
func errorResponse(c echo.Context, err error) error {
	var status int
	var code string
	switch {
	case errors.Is(err, ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, ErrSelfAction):
		status, code = http.StatusForbidden, "self_action"
	case errors.Is(err, ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrInvalidArgument):
		status, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, hospital.ErrInsufficientInventory):
		status, code = http.StatusUnprocessableEntity, "insufficient_inventory"
	case errors.Is(err, db.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "storage_unavailable"
	default:
		status, code = http.StatusInternalServerError, "internal"
	}
	return c.JSON(status, map[string]string{"code": code, "message": err.Error()})
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return p, nil
}

// createInput is the request creation payload. Requester, status, and
// provider are never read from the client.
type createInput struct {
	Type        Type                 `json:"type"`
	BloodGroup  *hospital.BloodGroup `json:"blood_group,omitempty"`
	Organ       *hospital.Organ      `json:"organ,omitempty"`
	Quantity    *int                 `json:"quantity,omitempty"`
	Description string               `json:"description"`
}

func (h *Handler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in createInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": err.Error()})
	}

	req := &ResourceRequest{
		Type:        in.Type,
		BloodGroup:  in.BloodGroup,
		Organ:       in.Organ,
		Quantity:    in.Quantity,
		Description: in.Description,
	}
	if err := h.svc.Create(c.Request().Context(), p.HospitalID, req); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": "invalid request id"})
	}
	req, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	if v := c.QueryParam("status"); v != "" {
		params["status"] = v
	}
	if v := c.QueryParam("type"); v != "" {
		params["type"] = v
	}
	items, total, err := h.svc.List(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Accept(c echo.Context) error {
	return h.lifecycleAction(c, h.svc.Accept)
}

func (h *Handler) Reject(c echo.Context) error {
	return h.lifecycleAction(c, h.svc.Reject)
}

func (h *Handler) Cancel(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": "invalid request id"})
	}
	if err := h.svc.Cancel(c.Request().Context(), id, p.HospitalID); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type finalizeInput struct {
	Status Status `json:"status"`
}

func (h *Handler) Finalize(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": "invalid request id"})
	}
	var in finalizeInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": err.Error()})
	}
	if err := h.svc.Finalize(c.Request().Context(), id, p.HospitalID, in.Status); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) lifecycleAction(c echo.Context, action func(ctx context.Context, id, actor uuid.UUID) error) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": "invalid request id"})
	}
	if err := action(c.Request().Context(), id, p.HospitalID); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
