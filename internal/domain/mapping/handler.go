package mapping

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthrec/healthrec/internal/platform/apperr"
	"github.com/healthrec/healthrec/internal/platform/auth"
	"github.com/healthrec/healthrec/pkg/pagination"
)

const (
	msgCreated     = "Doctor assigned to patient successfully"
	msgUpdated     = "Mapping updated successfully"
	msgCreateError = "Error assigning doctor to patient"
	msgUpdateError = "Error updating mapping"
)

type Handler struct {
	svc *Service
	now func() time.Time
}

// NewHandler returns the HTTP handlers for assignments.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/mappings/", h.List)
	g.POST("/mappings/", h.Create)
	g.GET("/mappings/patient/:patient_id/", h.ListByPatient)
	g.GET("/mappings/:id/", h.Get)
	g.PUT("/mappings/:id/", h.Update)
	g.PATCH("/mappings/:id/", h.Patch)
	g.DELETE("/mappings/:id/", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	f, err := listFilter(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, auth.UserIDFromContext(ctx), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(summaries(items), total, pg))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return apperr.NotFound("Patient not found.")
	}
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(ctx, auth.UserIDFromContext(ctx), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(summaries(items), total, pg))
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := apperr.BindBody(c, &in); err != nil {
		return apperr.WithMessage(err, msgCreateError)
	}
	ctx := c.Request().Context()
	r, err := h.svc.Create(ctx, auth.UserIDFromContext(ctx), &in)
	if err != nil {
		// A duplicate pair keeps its own message.
		if apperr.IsValidation(err) {
			return apperr.WithMessage(err, msgCreateError)
		}
		return err
	}
	return c.JSON(http.StatusCreated, apperr.Envelope{Message: msgCreated, Data: NewDetail(r, h.now())})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	r, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewDetail(r, h.now()))
}

func (h *Handler) Update(c echo.Context) error { return h.update(c, false) }

func (h *Handler) Patch(c echo.Context) error { return h.update(c, true) }

func (h *Handler) update(c echo.Context, partial bool) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := apperr.BindBody(c, &in); err != nil {
		return apperr.WithMessage(err, msgUpdateError)
	}
	ctx := c.Request().Context()
	r, err := h.svc.Update(ctx, auth.UserIDFromContext(ctx), id, &in, partial)
	if err != nil {
		if apperr.IsValidation(err) {
			return apperr.WithMessage(err, msgUpdateError)
		}
		return err
	}
	return c.JSON(http.StatusOK, apperr.Envelope{Message: msgUpdated, Data: NewDetail(r, h.now())})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, auth.UserIDFromContext(ctx), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errNotFound
	}
	return id, nil
}

// listFilter reads the status, patient and doctor query parameters.
func listFilter(c echo.Context) (ListFilter, error) {
	var f ListFilter
	errs := make(map[string][]string)

	switch status := c.QueryParam("status"); status {
	case "", StatusActive, StatusInactive, StatusPending:
		f.Status = status
	default:
		errs["status"] = []string{"Select a valid choice. " + status + " is not one of the available choices."}
	}
	for _, ref := range []struct {
		name string
		dst  *uuid.UUID
	}{{"patient", &f.PatientID}, {"doctor", &f.DoctorID}} {
		v := c.QueryParam(ref.name)
		if v == "" {
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil {
			errs[ref.name] = []string{"Enter a valid UUID."}
			continue
		}
		*ref.dst = id
	}

	if len(errs) > 0 {
		return ListFilter{}, apperr.Validation("Invalid filter", errs)
	}
	return f, nil
}

func summaries(items []*Listed) []Summary {
	out := make([]Summary, 0, len(items))
	for _, l := range items {
		out = append(out, NewSummary(l))
	}
	return out
}
