package request

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/GIRI-PRAKASH-007/Multi-hospital-communication-system/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo, *mockInventory) {
	svc, _, inv := newTestService()
	return NewHandler(svc), echo.New(), inv
}

func authedContext(e *echo.Echo, method, target, body string, hospitalID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	p := auth.Principal{ID: hospitalID.String(), Role: auth.RoleHospital, HospitalID: hospitalID}
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["code"]
}

func TestCreateRequestHandler(t *testing.T) {
	h, e, _ := newTestHandler()
	requester := uuid.New()

	body := `{"type":"blood","blood_group":"O-","quantity":2,"description":"ICU transfusion"}`
	c, rec := authedContext(e, http.MethodPost, "/", body, requester)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got ResourceRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != StatusOpen {
		t.Errorf("status = %q, want open", got.Status)
	}
	if got.RequestingHospitalID != requester {
		t.Errorf("requester = %s, want %s", got.RequestingHospitalID, requester)
	}
}

func TestCreateRequestHandler_InvalidDetails(t *testing.T) {
	h, e, _ := newTestHandler()

	body := `{"type":"blood","quantity":2}`
	c, rec := authedContext(e, http.MethodPost, "/", body, uuid.New())
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "invalid_argument" {
		t.Errorf("code = %q, want invalid_argument", code)
	}
}

func TestAcceptHandler_ErrorCodes(t *testing.T) {
	h, e, inv := newTestHandler()
	requester, provider := uuid.New(), uuid.New()
	inv.oxygen[provider] = 10

	r := &ResourceRequest{Type: TypeOxygen, Quantity: intPtr(4)}
	if err := h.svc.Create(context.Background(), requester, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Self-accept is forbidden.
	c, rec := authedContext(e, http.MethodPost, "/", "", requester)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.Accept(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("self accept: expected 403, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "self_action" {
		t.Errorf("self accept: code = %q, want self_action", code)
	}

	// Another hospital accepts successfully.
	c, rec = authedContext(e, http.MethodPost, "/", "", provider)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.Accept(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("accept: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// A second accept hits the state conflict.
	c, rec = authedContext(e, http.MethodPost, "/", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.Accept(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("repeat accept: expected 409, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "invalid_state" {
		t.Errorf("repeat accept: code = %q, want invalid_state", code)
	}
}

func TestAcceptHandler_InsufficientInventory(t *testing.T) {
	h, e, inv := newTestHandler()
	provider := uuid.New()
	inv.oxygen[provider] = 1

	r := &ResourceRequest{Type: TypeOxygen, Quantity: intPtr(5)}
	if err := h.svc.Create(context.Background(), uuid.New(), r); err != nil {
		t.Fatalf("create: %v", err)
	}

	c, rec := authedContext(e, http.MethodPost, "/", "", provider)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.Accept(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "insufficient_inventory" {
		t.Errorf("code = %q, want insufficient_inventory", code)
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()

	c, rec := authedContext(e, http.MethodGet, "/", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "not_found" {
		t.Errorf("code = %q, want not_found", code)
	}
}

func TestGetHandler_BadID(t *testing.T) {
	h, e, _ := newTestHandler()

	c, rec := authedContext(e, http.MethodGet, "/", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCancelHandler(t *testing.T) {
	h, e, _ := newTestHandler()
	requester := uuid.New()

	r := &ResourceRequest{Type: TypeOxygen, Quantity: intPtr(1)}
	if err := h.svc.Create(context.Background(), requester, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Someone else's delete is forbidden.
	c, rec := authedContext(e, http.MethodDelete, "/", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.Cancel(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}

	c, rec = authedContext(e, http.MethodDelete, "/", "", requester)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.Cancel(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestFinalizeHandler_BadTarget(t *testing.T) {
	h, e, _ := newTestHandler()
	requester := uuid.New()

	r := &ResourceRequest{Type: TypeOxygen, Quantity: intPtr(1)}
	if err := h.svc.Create(context.Background(), requester, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	c, rec := authedContext(e, http.MethodPost, "/", `{"status":"rejected"}`, requester)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())
	if err := h.Finalize(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != "invalid_argument" {
		t.Errorf("code = %q, want invalid_argument", code)
	}
}

func TestListHandler(t *testing.T) {
	h, e, _ := newTestHandler()
	requester := uuid.New()

	for i := 0; i < 3; i++ {
		r := &ResourceRequest{Type: TypeOxygen, Quantity: intPtr(i + 1)}
		if err := h.svc.Create(context.Background(), requester, r); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	c, rec := authedContext(e, http.MethodGet, "/?status=open", "", requester)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Total != 3 {
		t.Errorf("total = %d, want 3", body.Total)
	}
}
