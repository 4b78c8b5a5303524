package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/healthrec/healthrec/internal/platform/apperr"
	"github.com/healthrec/healthrec/internal/platform/auth"
)

func newTestHandler() (*Handler, *fixture, *echo.Echo) {
	fx := newFixture()
	h := NewHandler(fx.svc)
	h.now = func() time.Time { return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) }
	return h, fx, echo.New()
}

func newRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req = req.WithContext(auth.WithUserID(req.Context(), "caller-1"))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type envelope struct {
	Message string              `json:"message"`
	Data    Detail              `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func TestHandler_Create(t *testing.T) {
	h, fx, e := newTestHandler()
	p := fx.patients.add("Ada", "Lovelace")
	d := fx.doctors.add("Gregory", "House", "Other")
	body := fmt.Sprintf(`{"patient":%q,"doctor":%q,"notes":"referral"}`, p.ID, d.ID)

	c, rec := newRequest(e, http.MethodPost, "/mappings/", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var env envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Message != "Doctor assigned to patient successfully" {
		t.Errorf("unexpected message %q", env.Message)
	}
	if env.Data.Status != StatusActive || env.Data.Notes != "referral" {
		t.Errorf("unexpected data %+v", env.Data)
	}
	if env.Data.PatientDetails.FullName != "Ada Lovelace" || env.Data.DoctorDetails.FullName != "Dr. Gregory House" {
		t.Errorf("expected enriched details, got %+v / %+v", env.Data.PatientDetails, env.Data.DoctorDetails)
	}
	if env.Data.PatientDetails.Age != 33 {
		t.Errorf("expected patient age 33, got %d", env.Data.PatientDetails.Age)
	}
}

func TestHandler_Create_Duplicate(t *testing.T) {
	h, fx, e := newTestHandler()
	p := fx.patients.add("Ada", "Lovelace")
	d := fx.doctors.add("Gregory", "House", "Other")
	body := fmt.Sprintf(`{"patient":%q,"doctor":%q}`, p.ID, d.ID)

	c, _ := newRequest(e, http.MethodPost, "/mappings/", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("first create: %v", err)
	}
	c, _ = newRequest(e, http.MethodPost, "/mappings/", body)
	err := h.Create(c)

	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if ae.Message != "This doctor is already assigned to this patient" {
		t.Errorf("unexpected message %q", ae.Message)
	}
	if got := ae.Fields[apperr.NonFieldKey]; len(got) != 1 || got[0] != "Duplicate assignment" {
		t.Errorf("unexpected errors %v", ae.Fields)
	}
}

func TestHandler_Create_UnknownPatient(t *testing.T) {
	h, fx, e := newTestHandler()
	d := fx.doctors.add("Gregory", "House", "Other")
	body := fmt.Sprintf(`{"patient":"6f1c3c9e-3f43-4b8e-9c55-1d7f4c1f0a11","doctor":%q}`, d.ID)

	c, _ := newRequest(e, http.MethodPost, "/mappings/", body)
	err := h.Create(c)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ae.Message != "Error assigning doctor to patient" || len(ae.Fields["patient"]) == 0 {
		t.Errorf("unexpected error %+v", ae)
	}
}

func TestHandler_GetUpdateDelete(t *testing.T) {
	h, fx, e := newTestHandler()
	p := fx.patients.add("Ada", "Lovelace")
	d := fx.doctors.add("Gregory", "House", "Other")
	body := fmt.Sprintf(`{"patient":%q,"doctor":%q}`, p.ID, d.ID)
	c, rec := newRequest(e, http.MethodPost, "/mappings/", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	var created envelope
	json.Unmarshal(rec.Body.Bytes(), &created)
	id := created.Data.ID.String()

	c, rec = newRequest(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	var got Detail
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.DoctorDetails.Specialization != "Other" {
		t.Errorf("unexpected detail %+v", got)
	}

	c, rec = newRequest(e, http.MethodPatch, "/", `{"status":"inactive"}`)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Patch(c); err != nil {
		t.Fatalf("patch: %v", err)
	}
	var patched envelope
	json.Unmarshal(rec.Body.Bytes(), &patched)
	if patched.Message != "Mapping updated successfully" || patched.Data.Status != StatusInactive {
		t.Errorf("unexpected patch response %+v", patched)
	}

	c, _ = newRequest(e, http.MethodPut, "/", `{"status":"pending"}`)
	c.SetParamNames("id")
	c.SetParamValues(id)
	err := h.Update(c)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Message != "Error updating mapping" {
		t.Fatalf("expected update validation error, got %v", err)
	}

	c, rec = newRequest(e, http.MethodDelete, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	c, _ = newRequest(e, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h.Get(c); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestHandler_List(t *testing.T) {
	h, fx, e := newTestHandler()
	p := fx.patients.add("Ada", "Lovelace")
	d1 := fx.doctors.add("Gregory", "House", "Other")
	d2 := fx.doctors.add("Lisa", "Cuddy", "Endocrinology")
	for _, d := range []string{d1.ID.String(), d2.ID.String()} {
		c, _ := newRequest(e, http.MethodPost, "/mappings/", fmt.Sprintf(`{"patient":%q,"doctor":%q}`, p.ID, d))
		if err := h.Create(c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	c, rec := newRequest(e, http.MethodGet, "/mappings/?doctor="+d2.ID.String(), "")
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var page struct {
		Data  []Summary `json:"data"`
		Total int       `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Total != 1 || len(page.Data) != 1 {
		t.Fatalf("expected 1 assignment, got %d", page.Total)
	}
	s := page.Data[0]
	if s.PatientName != "Ada Lovelace" || s.DoctorName != "Dr. Lisa Cuddy" || s.DoctorSpecialization != "Endocrinology" {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestHandler_List_BadFilter(t *testing.T) {
	h, _, e := newTestHandler()

	c, _ := newRequest(e, http.MethodGet, "/mappings/?status=archived&doctor=42", "")
	err := h.List(c)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ae.Fields["status"]) == 0 || len(ae.Fields["doctor"]) == 0 {
		t.Errorf("unexpected errors %v", ae.Fields)
	}
}

func TestHandler_ListByPatient(t *testing.T) {
	h, fx, e := newTestHandler()
	p := fx.patients.add("Ada", "Lovelace")
	d := fx.doctors.add("Gregory", "House", "Other")
	c, _ := newRequest(e, http.MethodPost, "/mappings/", fmt.Sprintf(`{"patient":%q,"doctor":%q}`, p.ID, d.ID))
	h.Create(c)

	c, rec := newRequest(e, http.MethodGet, "/", "")
	c.SetParamNames("patient_id")
	c.SetParamValues(p.ID.String())
	if err := h.ListByPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var page struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &page)
	if page.Total != 1 {
		t.Errorf("expected 1, got %d", page.Total)
	}

	c, _ = newRequest(e, http.MethodGet, "/", "")
	c.SetParamNames("patient_id")
	c.SetParamValues("abc")
	if err := h.ListByPatient(c); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
