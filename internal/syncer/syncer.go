// Package syncer keeps a per-clinic in-memory view of the appointment
// collection coherent with the store. Mutations never edit the cached view
// directly: a successful write invalidates the clinic's collection and the
// next read refetches it in full, so the view can never drift from the store.
// A failed write leaves the view exactly as it was.
package syncer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentms/dentms/internal/domain/appointment"
	"github.com/dentms/dentms/internal/platform/db"
)

// Store is the appointment store the syncer wraps. *appointment.Service
// satisfies it.
type Store interface {
	ListAppointments(ctx context.Context) ([]*appointment.Appointment, error)
	CreateAppointment(ctx context.Context, a *appointment.Appointment) error
	UpdateAppointment(ctx context.Context, a *appointment.Appointment) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}

// MutationError reports a store write that did not take effect. The cached
// collection is untouched when this is returned.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

const defaultClinic = "default"

// collection is one clinic's cached appointment set, keyed by id.
type collection struct {
	mu     sync.RWMutex
	loaded bool
	items  map[uuid.UUID]*appointment.Appointment
}

type Syncer struct {
	store Store
	log   zerolog.Logger

	mu      sync.Mutex
	clinics map[string]*collection

	hookMu sync.RWMutex
	hooks  []func(clinic string)
}

func New(store Store, log zerolog.Logger) *Syncer {
	return &Syncer{
		store:   store,
		log:     log,
		clinics: make(map[string]*collection),
	}
}

// OnMutate registers a hook fired after every successful mutation, with the
// clinic whose data changed. Dependent caches (the today view) hang off this.
func (s *Syncer) OnMutate(fn func(clinic string)) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *Syncer) fireHooks(clinic string) {
	s.hookMu.RLock()
	defer s.hookMu.RUnlock()
	for _, fn := range s.hooks {
		fn(clinic)
	}
}

func clinicOf(ctx context.Context) string {
	if c := db.ClinicFromContext(ctx); c != "" {
		return c
	}
	return defaultClinic
}

func (s *Syncer) collection(clinic string) *collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.clinics[clinic]
	if !ok {
		col = &collection{items: make(map[uuid.UUID]*appointment.Appointment)}
		s.clinics[clinic] = col
	}
	return col
}

// ensure loads the collection from the store if it is not currently valid.
func (s *Syncer) ensure(ctx context.Context, clinic string, col *collection) error {
	col.mu.Lock()
	defer col.mu.Unlock()
	if col.loaded {
		return nil
	}
	items, err := s.store.ListAppointments(ctx)
	if err != nil {
		return fmt.Errorf("refetch appointments: %w", err)
	}
	col.items = make(map[uuid.UUID]*appointment.Appointment, len(items))
	for _, a := range items {
		col.items[a.ID] = a.Clone()
	}
	col.loaded = true
	s.log.Debug().Str("clinic", clinic).Int("count", len(items)).Msg("appointment collection refetched")
	return nil
}

// Appointments returns the clinic's collection sorted by scheduled time then
// id. The returned values are copies; callers may do what they like with
// them.
func (s *Syncer) Appointments(ctx context.Context) ([]*appointment.Appointment, error) {
	clinic := clinicOf(ctx)
	col := s.collection(clinic)
	if err := s.ensure(ctx, clinic, col); err != nil {
		return nil, err
	}

	col.mu.RLock()
	out := make([]*appointment.Appointment, 0, len(col.items))
	for _, a := range col.items {
		out = append(out, a.Clone())
	}
	col.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ScheduledAt != b.ScheduledAt {
			return a.ScheduledAt.Before(b.ScheduledAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

// Get looks an appointment up by id in the cached collection.
func (s *Syncer) Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	clinic := clinicOf(ctx)
	col := s.collection(clinic)
	if err := s.ensure(ctx, clinic, col); err != nil {
		return nil, err
	}

	col.mu.RLock()
	defer col.mu.RUnlock()
	a, ok := col.items[id]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	return a.Clone(), nil
}

// Create validates locally, writes through the store, and on success
// invalidates the clinic's collection. Validation failures never reach the
// store; store failures never touch the cache.
func (s *Syncer) Create(ctx context.Context, a *appointment.Appointment) error {
	a.ApplyDefaults()
	if err := a.Validate(); err != nil {
		return &MutationError{Op: "create", Err: err}
	}
	if err := s.store.CreateAppointment(ctx, a); err != nil {
		return &MutationError{Op: "create", Err: err}
	}
	s.afterMutation(ctx, clinicOf(ctx))
	return nil
}

// Update writes a full replacement through the store. Concurrent updates to
// the same id are last-write-wins; the refetched collection reflects
// whichever write the store applied last, keyed by id, never by call order.
func (s *Syncer) Update(ctx context.Context, a *appointment.Appointment) error {
	a.ApplyDefaults()
	if err := a.Validate(); err != nil {
		return &MutationError{Op: "update", Err: err}
	}
	if err := s.store.UpdateAppointment(ctx, a); err != nil {
		return &MutationError{Op: "update", Err: err}
	}
	s.afterMutation(ctx, clinicOf(ctx))
	return nil
}

func (s *Syncer) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		return &MutationError{Op: "delete", Err: err}
	}
	s.afterMutation(ctx, clinicOf(ctx))
	return nil
}

// Invalidate drops the clinic's cached collection; the next read refetches.
func (s *Syncer) Invalidate(ctx context.Context) {
	col := s.collection(clinicOf(ctx))
	col.mu.Lock()
	col.loaded = false
	col.mu.Unlock()
}

// afterMutation invalidates and eagerly refetches. A refetch failure is not a
// mutation failure: the write landed, so the collection stays invalid and the
// next read retries the fetch.
func (s *Syncer) afterMutation(ctx context.Context, clinic string) {
	col := s.collection(clinic)
	col.mu.Lock()
	col.loaded = false
	col.mu.Unlock()

	if err := s.ensure(ctx, clinic, col); err != nil {
		s.log.Warn().Err(err).Str("clinic", clinic).Msg("refetch after mutation failed")
	}
	s.fireHooks(clinic)
}
