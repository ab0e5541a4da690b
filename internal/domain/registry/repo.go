package registry

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}

type DentistRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Dentist, error)
	List(ctx context.Context, limit, offset int) ([]*Dentist, int, error)
}
