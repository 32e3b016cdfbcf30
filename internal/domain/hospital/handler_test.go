package hospital

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func contextAs(e *echo.Echo, method, target, body string, p auth.Principal) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asHospital(id uuid.UUID) auth.Principal {
	return auth.Principal{ID: id.String(), Role: auth.RoleHospital, HospitalID: id}
}

func asAdmin() auth.Principal {
	return auth.Principal{ID: "admin", Role: auth.RoleAdmin}
}

func TestRegisterHandler(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"City General","city":"Pune","oxygen_cylinders":10}`
	c, rec := contextAs(e, http.MethodPost, "/", body, asAdmin())
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got Hospital
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID == uuid.Nil || got.Name != "City General" {
		t.Errorf("unexpected hospital: %+v", got)
	}
}

func TestRegisterHandler_MissingName(t *testing.T) {
	h, e := newTestHandler()

	c, rec := contextAs(e, http.MethodPost, "/", `{"city":"Pune"}`, asAdmin())
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetHandler(t *testing.T) {
	h, e := newTestHandler()

	hosp := &Hospital{Name: "Ridge Trauma Center"}
	if err := h.svc.Register(nil, hosp); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, rec := contextAs(e, http.MethodGet, "/", "", asHospital(uuid.New()))
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Name != "Ridge Trauma Center" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	h, e := newTestHandler()

	c, rec := contextAs(e, http.MethodGet, "/", "", asHospital(uuid.New()))
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateProfileHandler_Authorization(t *testing.T) {
	h, e := newTestHandler()

	hosp := &Hospital{Name: "City General"}
	if err := h.svc.Register(nil, hosp); err != nil {
		t.Fatalf("register: %v", err)
	}
	body := `{"name":"City General Hospital"}`

	// Another hospital may not touch the profile.
	c, rec := contextAs(e, http.MethodPut, "/", body, asHospital(uuid.New()))
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign hospital: expected 403, got %d", rec.Code)
	}

	// The owner may.
	c, rec = contextAs(e, http.MethodPut, "/", body, asHospital(hosp.ID))
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("owner: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// So may an admin.
	c, rec = contextAs(e, http.MethodPut, "/", body, asAdmin())
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", rec.Code)
	}
}

func TestReplaceInventoryHandler_OwnerOnly(t *testing.T) {
	h, e := newTestHandler()

	hosp := &Hospital{Name: "City General"}
	if err := h.svc.Register(nil, hosp); err != nil {
		t.Fatalf("register: %v", err)
	}
	body := `{"oxygen_cylinders":7,"blood":[{"blood_group":"A+","units":3}]}`

	// Admins read inventory like anyone else but never write it.
	c, rec := contextAs(e, http.MethodPut, "/", body, asAdmin())
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())
	if err := h.ReplaceInventory(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("admin: expected 403, got %d", rec.Code)
	}

	c, rec = contextAs(e, http.MethodPut, "/", body, asHospital(hosp.ID))
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())
	if err := h.ReplaceInventory(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("owner: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSearchHandler(t *testing.T) {
	h, e := newTestHandler()

	caller := &Hospital{Name: "Caller"}
	provider := &Hospital{Name: "Provider", OxygenCylinders: 40}
	for _, hosp := range []*Hospital{caller, provider} {
		if err := h.svc.Register(nil, hosp); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	c, rec := contextAs(e, http.MethodGet, "/?type=oxygen&quantity=10", "", asHospital(caller.ID))
	if err := h.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got []*Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Provider" {
		t.Errorf("got %d results, want only the provider", len(got))
	}
}

func TestSearchHandler_BadQuantity(t *testing.T) {
	h, e := newTestHandler()

	c, rec := contextAs(e, http.MethodGet, "/?type=oxygen&quantity=many", "", asHospital(uuid.New()))
	if err := h.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSearchHandler_NoMatchesReturnsEmptyList(t *testing.T) {
	h, e := newTestHandler()

	c, rec := contextAs(e, http.MethodGet, "/?type=oxygen&quantity=100", "", asHospital(uuid.New()))
	if err := h.Search(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestDeleteHandler(t *testing.T) {
	h, e := newTestHandler()

	hosp := &Hospital{Name: "City General"}
	if err := h.svc.Register(nil, hosp); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, rec := contextAs(e, http.MethodDelete, "/", "", asAdmin())
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())
	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	c, rec = contextAs(e, http.MethodGet, "/", "", asAdmin())
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}
