package doctor

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
	msgCreated     = "Doctor created successfully"
	msgUpdated     = "Doctor updated successfully"
	msgCreateError = "Error creating doctor"
	msgUpdateError = "Error updating doctor"
)

type Handler struct {
	svc *Service
	now func() time.Time
}

// NewHandler returns the HTTP handlers for doctors.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/doctors/", h.List)
	g.POST("/doctors/", h.Create)
	g.GET("/doctors/:id/", h.Get)
	g.PUT("/doctors/:id/", h.Update)
	g.PATCH("/doctors/:id/", h.Patch)
	g.DELETE("/doctors/:id/", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	filters := map[string]string{
		"specialization": c.QueryParam("specialization"),
		"gender":         c.QueryParam("gender"),
		"is_available":   c.QueryParam("is_available"),
		"search":         c.QueryParam("search"),
	}
	doctors, total, err := h.svc.List(ctx, auth.UserIDFromContext(ctx), filters, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	asOf := h.now()
	items := make([]Summary, 0, len(doctors))
	for _, d := range doctors {
		items = append(items, NewSummary(d, asOf))
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := apperr.BindBody(c, &in); err != nil {
		return apperr.WithMessage(err, msgCreateError)
	}
	ctx := c.Request().Context()
	d, err := h.svc.Create(ctx, auth.UserIDFromContext(ctx), &in)
	if err != nil {
		if apperr.IsValidation(err) || apperr.IsConflict(err) {
			return apperr.WithMessage(err, msgCreateError)
		}
		return err
	}
	return c.JSON(http.StatusCreated, apperr.Envelope{Message: msgCreated, Data: NewDetail(d, h.now())})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	d, err := h.svc.Get(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewDetail(d, h.now()))
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
	d, err := h.svc.Update(ctx, auth.UserIDFromContext(ctx), id, &in, partial)
	if err != nil {
		if apperr.IsValidation(err) || apperr.IsConflict(err) {
			return apperr.WithMessage(err, msgUpdateError)
		}
		return err
	}
	return c.JSON(http.StatusOK, apperr.Envelope{Message: msgUpdated, Data: NewDetail(d, h.now())})
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
