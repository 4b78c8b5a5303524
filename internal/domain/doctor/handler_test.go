package doctor

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthrec/healthrec/internal/platform/apperr"
	"github.com/healthrec/healthrec/internal/platform/auth"
)

const createBody = `{"first_name":"Gregory","last_name":"House","specialization":"Other",
	"license_number":"MD1","phone_number":"555-0142","email":"house@example.com",
	"address":"Princeton","gender":"M","date_of_birth":"1959-06-11",
	"years_of_experience":20,"education":"Johns Hopkins","consultation_fee":"150.00"}`

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _, _ := newTestService()
	h := NewHandler(svc)
	h.now = func() time.Time { return time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC) }
	return h, echo.New()
}

func newRequest(e *echo.Echo, method, caller, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	req = req.WithContext(auth.WithUserID(req.Context(), caller))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type envelope struct {
	Message string              `json:"message"`
	Data    Detail              `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func TestHandler_Create(t *testing.T) {
	h, e := newTestHandler()

	c, rec := newRequest(e, http.MethodPost, "caller-1", createBody)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var env envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Message != "Doctor created successfully" {
		t.Errorf("unexpected message %q", env.Message)
	}
	if env.Data.FullName != "Dr. Gregory House" || env.Data.Age != 65 {
		t.Errorf("unexpected derived fields %+v", env.Data)
	}
	if env.Data.ConsultationFee == nil || env.Data.ConsultationFee.StringFixed(2) != "150.00" {
		t.Errorf("unexpected fee %v", env.Data.ConsultationFee)
	}
}

func TestHandler_Create_DuplicateLicense(t *testing.T) {
	h, e := newTestHandler()

	c, _ := newRequest(e, http.MethodPost, "caller-1", createBody)
	if err := h.Create(c); err != nil {
		t.Fatalf("first create: %v", err)
	}
	c, _ = newRequest(e, http.MethodPost, "caller-2", createBody)
	err := h.Create(c)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if ae.Message != "Error creating doctor" {
		t.Errorf("unexpected message %q", ae.Message)
	}
	if apperr.StatusCode(ae.Kind) != http.StatusBadRequest {
		t.Error("conflicts are reported as 400")
	}
}

func TestHandler_Create_BadSpecialization(t *testing.T) {
	h, e := newTestHandler()

	body := strings.Replace(createBody, `"Other"`, `"Witchcraft"`, 1)
	c, _ := newRequest(e, http.MethodPost, "caller-1", body)
	err := h.Create(c)
	var ae *apperr.Error
	if !errors.As(err, &ae) || len(ae.Fields["specialization"]) == 0 {
		t.Fatalf("expected specialization error, got %v", err)
	}
}

func TestHandler_GetPatchDelete(t *testing.T) {
	h, e := newTestHandler()

	c, rec := newRequest(e, http.MethodPost, "caller-1", createBody)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	var created envelope
	json.Unmarshal(rec.Body.Bytes(), &created)
	id := created.Data.ID.String()

	c, rec = newRequest(e, http.MethodGet, "caller-2", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, rec = newRequest(e, http.MethodPatch, "caller-2", `{"is_available":false,"consultation_fee":null}`)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Patch(c); err != nil {
		t.Fatalf("patch: %v", err)
	}
	var patched envelope
	json.Unmarshal(rec.Body.Bytes(), &patched)
	if patched.Message != "Doctor updated successfully" {
		t.Errorf("unexpected message %q", patched.Message)
	}
	if patched.Data.IsAvailable || patched.Data.ConsultationFee != nil {
		t.Errorf("unexpected data %+v", patched.Data)
	}

	c, rec = newRequest(e, http.MethodDelete, "caller-2", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e := newTestHandler()

	c, _ := newRequest(e, http.MethodGet, "caller-1", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	if err := h.Get(c); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHandler_List(t *testing.T) {
	h, e := newTestHandler()
	c, _ := newRequest(e, http.MethodPost, "caller-1", createBody)
	h.Create(c)

	c, rec := newRequest(e, http.MethodGet, "caller-2", "")
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var page struct {
		Data  []Summary `json:"data"`
		Total int       `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Total != 1 || len(page.Data) != 1 {
		t.Errorf("doctors are visible to every caller, got total=%d", page.Total)
	}
}
