package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dentms/dentms/internal/wallclock"
)

// ErrNotFound is returned for lookups of ids the store does not hold.
var ErrNotFound = errors.New("appointment not found")

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByRange(ctx context.Context, from, to wallclock.CivilDate) ([]*Appointment, error)
	ListAll(ctx context.Context) ([]*Appointment, error)
}
