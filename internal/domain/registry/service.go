package registry

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	patients PatientRepository
	dentists DentistRepository
}

func NewService(patients PatientRepository, dentists DentistRepository) *Service {
	return &Service{patients: patients, dentists: dentists}
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetDentist(ctx context.Context, id uuid.UUID) (*Dentist, error) {
	return s.dentists.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) ListDentists(ctx context.Context, limit, offset int) ([]*Dentist, int, error) {
	return s.dentists.List(ctx, limit, offset)
}

// PatientName resolves a display name. A miss is not an error; callers fall
// back to a placeholder label.
func (s *Service) PatientName(ctx context.Context, id uuid.UUID) (string, bool) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil || p.FullName == "" {
		return "", false
	}
	return p.FullName, true
}

// DentistName resolves a display name, same contract as PatientName.
func (s *Service) DentistName(ctx context.Context, id uuid.UUID) (string, bool) {
	d, err := s.dentists.GetByID(ctx, id)
	if err != nil || d.FullName == "" {
		return "", false
	}
	return d.FullName, true
}
