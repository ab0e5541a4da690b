package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dentms/dentms/internal/calendar"
	"github.com/dentms/dentms/internal/wallclock"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusScheduled: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true,
}

// transitions holds the allowed forward moves. Completed and cancelled are
// terminal.
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func (s Status) Valid() bool { return validStatuses[s] }

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is allowed. Staying in
// the same state is always allowed so that non-status edits pass through.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Duration bounds in minutes. Slots run on a 15-minute raster.
const (
	MinDuration     = 15
	MaxDuration     = 480
	DefaultDuration = 60
	DurationStep    = 15
)

type Appointment struct {
	ID              uuid.UUID              `db:"id" json:"id"`
	PatientID       uuid.UUID              `db:"patient_id" json:"patient_id"`
	DentistID       uuid.UUID              `db:"dentist_id" json:"dentist_id"`
	ScheduledAt     wallclock.CivilInstant `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int                    `db:"duration_minutes" json:"duration_minutes"`
	Status          Status                 `db:"status" json:"status"`
	Reason          *string                `db:"reason" json:"reason,omitempty"`
	Notes           *string                `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time              `db:"updated_at" json:"updated_at"`
}

// ValidationError rejects an appointment before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ApplyDefaults fills the fields a minimal create request may omit.
func (a *Appointment) ApplyDefaults() {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = DefaultDuration
	}
}

// Validate checks the invariants shared by create and update. Defaults are
// not applied here; call ApplyDefaults first.
func (a *Appointment) Validate() error {
	if a.PatientID == uuid.Nil {
		return &ValidationError{Field: "patient_id", Reason: "is required"}
	}
	if a.DentistID == uuid.Nil {
		return &ValidationError{Field: "dentist_id", Reason: "is required"}
	}
	if a.ScheduledAt.IsZero() {
		return &ValidationError{Field: "scheduled_at", Reason: "is required"}
	}
	if !a.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", a.Status)}
	}
	if a.DurationMinutes < MinDuration || a.DurationMinutes > MaxDuration {
		return &ValidationError{
			Field:  "duration_minutes",
			Reason: fmt.Sprintf("must be between %d and %d", MinDuration, MaxDuration),
		}
	}
	if a.DurationMinutes%DurationStep != 0 {
		return &ValidationError{
			Field:  "duration_minutes",
			Reason: fmt.Sprintf("must be a multiple of %d", DurationStep),
		}
	}
	return nil
}

// CalendarEvent converts the appointment into the grid engine's event shape.
func (a *Appointment) CalendarEvent() calendar.Event {
	reason := ""
	if a.Reason != nil {
		reason = *a.Reason
	}
	return calendar.Event{
		ID:              a.ID.String(),
		PatientID:       a.PatientID.String(),
		DentistID:       a.DentistID.String(),
		Start:           a.ScheduledAt,
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		Reason:          reason,
	}
}

// Clone returns a deep copy, so cached collections can hand out values
// without aliasing their internal state.
func (a *Appointment) Clone() *Appointment {
	cp := *a
	if a.Reason != nil {
		r := *a.Reason
		cp.Reason = &r
	}
	if a.Notes != nil {
		n := *a.Notes
		cp.Notes = &n
	}
	return &cp
}
