package hospital

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	api.GET("/hospitals", h.List)
	api.GET("/hospitals/search", h.Search, auth.RequireHospital())
	api.GET("/hospitals/:id", h.Get)
	api.POST("/hospitals", h.Register, auth.RequireRole(auth.RoleAdmin))
	api.PUT("/hospitals/:id", h.UpdateProfile)
	api.PUT("/hospitals/:id/inventory", h.ReplaceInventory, auth.RequireHospital())
	api.DELETE("/hospitals/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
}

// errorResponse translates service errors into stable API error codes.
func errorResponse(c echo.Context, err error) error {
	var status int
	var code string
	switch {
	case errors.Is(err, ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, ErrInvalidArgument):
		status, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, ErrInsufficientInventory):
		status, code = http.StatusUnprocessableEntity, "insufficient_inventory"
	case errors.Is(err, db.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "storage_unavailable"
	default:
		status, code = http.StatusInternalServerError, "internal"
	}
	return c.JSON(status, map[string]string{"code": code, "message": err.Error()})
}

func (h *Handler) Register(c echo.Context) error {
	var hosp Hospital
	if err := c.Bind(&hosp); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": err.Error()})
	}
	if err := h.svc.Register(c.Request().Context(), &hosp); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, hosp)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": "invalid hospital id"})
	}
	profile, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": "invalid hospital id"})
	}
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"code": "unauthenticated", "message": "authentication required"})
	}
	if p.Role != auth.RoleAdmin && p.HospitalID != id {
		return c.JSON(http.StatusForbidden, map[string]string{"code": "forbidden", "message": "only the hospital itself or an admin may update the profile"})
	}

	var hosp Hospital
	if err := c.Bind(&hosp); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": err.Error()})
	}
	hosp.ID = id
	if err := h.svc.UpdateProfile(c.Request().Context(), &hosp); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, hosp)
}

func (h *Handler) ReplaceInventory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": "invalid hospital id"})
	}
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"code": "unauthenticated", "message": "authentication required"})
	}
	// Inventory is an advertisement of the hospital's own stock; nobody else
	// may write it, admins included.
	if p.HospitalID != id {
		return c.JSON(http.StatusForbidden, map[string]string{"code": "forbidden", "message": "only the owning hospital may replace its inventory"})
	}

	var inv InventorySnapshot
	if err := c.Bind(&inv); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": err.Error()})
	}
	if err := h.svc.ReplaceInventory(c.Request().Context(), id, &inv); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": "invalid hospital id"})
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Search(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"code": "unauthenticated", "message": "authentication required"})
	}

	params := SearchParams{
		Type:       c.QueryParam("type"),
		BloodGroup: c.QueryParam("blood_group"),
		Organ:      c.QueryParam("organ"),
	}
	if raw := c.QueryParam("quantity"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_argument", "message": "quantity must be an integer"})
		}
		params.Quantity = q
	}

	items, err := h.svc.Search(c.Request().Context(), p.HospitalID, params)
	if err != nil {
		return errorResponse(c, err)
	}
	if items == nil {
		items = []*Summary{}
	}
	return c.JSON(http.StatusOK, items)
}
