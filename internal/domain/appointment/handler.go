package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentms/dentms/internal/calendar"
	"github.com/dentms/dentms/internal/platform/cache"
	"github.com/dentms/dentms/internal/platform/db"
	"github.com/dentms/dentms/internal/wallclock"
	"github.com/dentms/dentms/pkg/pagination"
)

// Collection is the synchronized appointment view the handler serves from.
// *syncer.Syncer satisfies it.
type Collection interface {
	Appointments(ctx context.Context) ([]*Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Create(ctx context.Context, a *Appointment) error
	Update(ctx context.Context, a *Appointment) error
	Remove(ctx context.Context, id uuid.UUID) error
}

// Directory resolves patient and dentist display names for labels.
type Directory interface {
	PatientName(ctx context.Context, id uuid.UUID) (string, bool)
	DentistName(ctx context.Context, id uuid.UUID) (string, bool)
}

const todayTTL = time.Minute

type Handler struct {
	col   Collection
	dir   Directory
	views cache.Cache
	opts  calendar.Options
	now   func() time.Time
}

func NewHandler(col Collection, dir Directory, views cache.Cache, opts calendar.Options) *Handler {
	return &Handler{col: col, dir: dir, views: views, opts: opts, now: time.Now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments/today", h.TodayView)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
	api.GET("/calendar", h.Calendar)
}

// mutationStatus maps a write failure onto an HTTP status: the caller's fault
// for validation, upstream's fault otherwise.
func mutationStatus(err error) int {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.col.Create(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(mutationStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.col.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, err := h.col.Appointments(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if dentistID := c.QueryParam("dentist_id"); dentistID != "" {
		did, err := uuid.Parse(dentistID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid dentist_id")
		}
		filtered := items[:0:0]
		for _, a := range items {
			if a.DentistID == did {
				filtered = append(filtered, a)
			}
		}
		items = filtered
	}

	total := len(items)
	from := pg.Offset
	if from > total {
		from = total
	}
	to := from + pg.Limit
	if to > total {
		to = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items[from:to], total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	if err := h.col.Update(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(mutationStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.col.Remove(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(mutationStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// calendarResponse pairs the computed grid with display labels keyed by
// event id.
type calendarResponse struct {
	Grid   calendar.Grid             `json:"grid"`
	Labels map[string]calendar.Label `json:"labels"`
}

func (h *Handler) Calendar(c echo.Context) error {
	ctx := c.Request().Context()

	reference := calendar.Today(h.now())
	if ds := c.QueryParam("date"); ds != "" {
		d, err := wallclock.ParseDate(ds)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
		}
		reference = d
	}

	view := calendar.ViewMode(c.QueryParam("view"))
	if view == "" {
		view = calendar.ViewWeek
	}
	if !view.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "view must be day, week or month")
	}

	items, err := h.col.Appointments(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	events := make([]calendar.Event, len(items))
	for i, a := range items {
		events[i] = a.CalendarEvent()
	}

	if dentistID := c.QueryParam("dentist_id"); dentistID != "" {
		if _, err := uuid.Parse(dentistID); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid dentist_id")
		}
		events = calendar.FilterByDentist(events, dentistID)
	}

	grid := calendar.ComputeGrid(reference, view, events, h.opts)

	patients, dentists := h.lookups(ctx)
	labels := make(map[string]calendar.Label, len(events))
	for _, e := range events {
		labels[e.ID] = calendar.ProjectLabel(e, patients, dentists)
	}

	return c.JSON(http.StatusOK, calendarResponse{Grid: grid, Labels: labels})
}

// todayEntry is one row of the today aggregate.
type todayEntry struct {
	Appointment *Appointment   `json:"appointment"`
	Label       calendar.Label `json:"label"`
}

// TodayView serves the day's appointments with labels, cached per clinic and
// date. The cache is cleared on every successful mutation, so a hit is never
// stale.
func (h *Handler) TodayView(c echo.Context) error {
	ctx := c.Request().Context()
	today := calendar.Today(h.now())
	key := "today:" + db.ClinicFromContext(ctx) + ":" + today.String()

	if data, ok := h.views.Get(ctx, key); ok {
		c.Response().Header().Set("X-Cache", "HIT")
		return c.JSONBlob(http.StatusOK, data)
	}

	items, err := h.col.Appointments(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	patients, dentists := h.lookups(ctx)
	entries := []todayEntry{}
	for _, a := range items {
		if a.ScheduledAt.Date() != today {
			continue
		}
		entries = append(entries, todayEntry{
			Appointment: a,
			Label:       calendar.ProjectLabel(a.CalendarEvent(), patients, dentists),
		})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.views.Set(ctx, key, data, todayTTL)
	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSONBlob(http.StatusOK, data)
}

// lookups adapts the directory to the projection's string-keyed lookup shape.
func (h *Handler) lookups(ctx context.Context) (calendar.LookupFunc, calendar.LookupFunc) {
	patient := func(id string) (string, bool) {
		uid, err := uuid.Parse(id)
		if err != nil {
			return "", false
		}
		return h.dir.PatientName(ctx, uid)
	}
	dentist := func(id string) (string, bool) {
		uid, err := uuid.Parse(id)
		if err != nil {
			return "", false
		}
		return h.dir.DentistName(ctx, uid)
	}
	return patient, dentist
}
