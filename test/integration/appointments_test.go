package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentms/dentms/internal/domain/appointment"
	"github.com/dentms/dentms/internal/domain/registry"
	"github.com/dentms/dentms/internal/wallclock"
)

func TestAppointmentCRUD(t *testing.T) {
	ctx := context.Background()
	clinic := uniqueClinicID("crud")
	createClinicSchema(t, ctx, clinic)
	defer dropClinicSchema(t, ctx, clinic)

	patientID := seedPatient(t, ctx, clinic, "Ada Moreno")
	dentistID := seedDentist(t, ctx, clinic, "Dr. Imani Okafor")

	svc := appointment.NewService(appointment.NewRepoPG(globalDB.Pool))

	var created appointment.Appointment
	err := withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
		a := &appointment.Appointment{
			PatientID:       patientID,
			DentistID:       dentistID,
			ScheduledAt:     wallclock.CivilDate{Year: 2026, Month: 9, Day: 14}.At(9, 30),
			DurationMinutes: 45,
		}
		if err := svc.CreateAppointment(ctx, a); err != nil {
			return err
		}
		created = *a
		return nil
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected created appointment to have an id")
	}
	if created.Status != appointment.StatusScheduled {
		t.Errorf("expected default status scheduled, got %s", created.Status)
	}

	// Read it back: the wall-clock fields must survive the round trip exactly.
	err = withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
		got, err := svc.GetAppointment(ctx, created.ID)
		if err != nil {
			return err
		}
		if got.ScheduledAt != created.ScheduledAt {
			t.Errorf("scheduled_at changed across storage: got %v, want %v", got.ScheduledAt, created.ScheduledAt)
		}
		if got.ScheduledAt.Hour != 9 || got.ScheduledAt.Minute != 30 {
			t.Errorf("expected 09:30, got %02d:%02d", got.ScheduledAt.Hour, got.ScheduledAt.Minute)
		}
		if got.DurationMinutes != 45 {
			t.Errorf("expected duration 45, got %d", got.DurationMinutes)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("get appointment: %v", err)
	}

	// Walk the lifecycle forward.
	err = withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
		upd := created
		upd.Status = appointment.StatusInProgress
		if err := svc.UpdateAppointment(ctx, &upd); err != nil {
			return err
		}
		upd.Status = appointment.StatusCompleted
		return svc.UpdateAppointment(ctx, &upd)
	})
	if err != nil {
		t.Fatalf("advance lifecycle: %v", err)
	}

	// Completed is terminal.
	err = withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
		upd := created
		upd.Status = appointment.StatusCancelled
		return svc.UpdateAppointment(ctx, &upd)
	})
	var verr *appointment.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for terminal transition, got %v", err)
	}

	// Delete
	err = withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
		if err := svc.DeleteAppointment(ctx, created.ID); err != nil {
			return err
		}
		_, err := svc.GetAppointment(ctx, created.ID)
		return err
	})
	if !errors.Is(err, appointment.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAppointmentClinicIsolation(t *testing.T) {
	ctx := context.Background()
	clinicA := uniqueClinicID("north")
	clinicB := uniqueClinicID("south")
	createClinicSchema(t, ctx, clinicA)
	createClinicSchema(t, ctx, clinicB)
	defer dropClinicSchema(t, ctx, clinicA)
	defer dropClinicSchema(t, ctx, clinicB)

	svc := appointment.NewService(appointment.NewRepoPG(globalDB.Pool))

	for _, clinic := range []string{clinicA, clinicB} {
		pid := seedPatient(t, ctx, clinic, "Patient "+clinic)
		did := seedDentist(t, ctx, clinic, "Dentist "+clinic)
		err := withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
			return svc.CreateAppointment(ctx, &appointment.Appointment{
				PatientID:   pid,
				DentistID:   did,
				ScheduledAt: wallclock.CivilDate{Year: 2026, Month: 9, Day: 1}.At(10, 0),
			})
		})
		if err != nil {
			t.Fatalf("create in %s: %v", clinic, err)
		}
	}

	// Each clinic sees exactly its own appointment.
	for _, clinic := range []string{clinicA, clinicB} {
		err := withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
			items, err := svc.ListAppointments(ctx)
			if err != nil {
				return err
			}
			if len(items) != 1 {
				t.Errorf("clinic %s: expected 1 appointment, got %d", clinic, len(items))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("list in %s: %v", clinic, err)
		}
	}
}

func TestAppointmentListByRange(t *testing.T) {
	ctx := context.Background()
	clinic := uniqueClinicID("range")
	createClinicSchema(t, ctx, clinic)
	defer dropClinicSchema(t, ctx, clinic)

	pid := seedPatient(t, ctx, clinic, "Bram Feld")
	did := seedDentist(t, ctx, clinic, "Dr. Sol Braga")

	svc := appointment.NewService(appointment.NewRepoPG(globalDB.Pool))

	days := []int{24, 25, 26, 31}
	err := withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
		for _, d := range days {
			a := &appointment.Appointment{
				PatientID:   pid,
				DentistID:   did,
				ScheduledAt: wallclock.CivilDate{Year: 2026, Month: 8, Day: d}.At(14, 0),
			}
			if err := svc.CreateAppointment(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed appointments: %v", err)
	}

	// Aug 25 through Aug 26 inclusive.
	err = withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
		events, err := svc.EventsBetween(ctx,
			wallclock.CivilDate{Year: 2026, Month: 8, Day: 25},
			wallclock.CivilDate{Year: 2026, Month: 8, Day: 26})
		if err != nil {
			return err
		}
		if len(events) != 2 {
			t.Errorf("expected 2 events in range, got %d", len(events))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("events between: %v", err)
	}
}

func TestRegistryLookups(t *testing.T) {
	ctx := context.Background()
	clinic := uniqueClinicID("reg")
	createClinicSchema(t, ctx, clinic)
	defer dropClinicSchema(t, ctx, clinic)

	pid := seedPatient(t, ctx, clinic, "Noa Lindqvist")
	did := seedDentist(t, ctx, clinic, "Dr. Ren Takeda")

	svc := registry.NewService(registry.NewPatientRepoPG(globalDB.Pool), registry.NewDentistRepoPG(globalDB.Pool))

	err := withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
		if name, ok := svc.PatientName(ctx, pid); !ok || name != "Noa Lindqvist" {
			t.Errorf("PatientName = %q, %v", name, ok)
		}
		if name, ok := svc.DentistName(ctx, did); !ok || name != "Dr. Ren Takeda" {
			t.Errorf("DentistName = %q, %v", name, ok)
		}
		if _, ok := svc.PatientName(ctx, uuid.New()); ok {
			t.Error("expected miss for unknown patient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("registry lookups: %v", err)
	}

	// created_at is set by the database
	err = withClinicConn(ctx, globalDB.Pool, clinic, func(ctx context.Context) error {
		p, err := svc.GetPatient(ctx, pid)
		if err != nil {
			return err
		}
		if p.CreatedAt.IsZero() || time.Since(p.CreatedAt) > time.Hour {
			t.Errorf("unexpected created_at: %v", p.CreatedAt)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("get patient: %v", err)
	}
}
