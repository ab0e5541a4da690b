package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dentms/dentms/internal/calendar"
	"github.com/dentms/dentms/internal/wallclock"
)

// Service enforces validation and lifecycle rules at the store boundary.
// Double-booking is deliberately not prevented here; the front desk resolves
// conflicts by eye on the calendar.
type Service struct {
	appointments Repository
}

func NewService(repo Repository) *Service {
	return &Service{appointments: repo}
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	a.ApplyDefaults()
	if err := a.Validate(); err != nil {
		return err
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	current, err := s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("load appointment %s: %w", a.ID, err)
	}
	a.ApplyDefaults()
	if err := a.Validate(); err != nil {
		return err
	}
	if !current.Status.CanTransition(a.Status) {
		return &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("cannot move from %s to %s", current.Status, a.Status),
		}
	}
	return s.appointments.Update(ctx, a)
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.appointments.Delete(ctx, id)
}

// ListAppointments returns the full collection, the refetch source for the
// sync layer.
func (s *Service) ListAppointments(ctx context.Context) ([]*Appointment, error) {
	return s.appointments.ListAll(ctx)
}

func (s *Service) ListPage(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDentist(ctx, dentistID, limit, offset)
}

// EventsBetween loads the appointments in [from, to] as calendar events.
func (s *Service) EventsBetween(ctx context.Context, from, to wallclock.CivilDate) ([]calendar.Event, error) {
	items, err := s.appointments.ListByRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	events := make([]calendar.Event, len(items))
	for i, a := range items {
		events[i] = a.CalendarEvent()
	}
	return events, nil
}
