package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentms/dentms/internal/platform/db"
	"github.com/dentms/dentms/internal/wallclock"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, patient_id, dentist_id, scheduled_at, duration_minutes,
	status, reason, notes, created_at, updated_at`

// scanAppointment maps the scheduled_at TIMESTAMP column back to civil
// fields. The column has no time zone; the driver's time.Time is only a
// carrier for the digits.
func (r *repoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var scheduledAt time.Time
	err := row.Scan(&a.ID, &a.PatientID, &a.DentistID, &scheduledAt, &a.DurationMinutes,
		&a.Status, &a.Reason, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.ScheduledAt = wallclock.FromTime(scheduledAt)
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, patient_id, dentist_id, scheduled_at,
			duration_minutes, status, reason, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.PatientID, a.DentistID, a.ScheduledAt.UTC(),
		a.DurationMinutes, a.Status, a.Reason, a.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := r.scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET patient_id=$2, dentist_id=$3, scheduled_at=$4,
			duration_minutes=$5, status=$6, reason=$7, notes=$8, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.PatientID, a.DentistID, a.ScheduledAt.UTC(),
		a.DurationMinutes, a.Status, a.Reason, a.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointments ORDER BY scheduled_at, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *repoPG) ListByDentist(ctx context.Context, dentistID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE dentist_id = $1`, dentistID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE dentist_id = $1 ORDER BY scheduled_at, id LIMIT $2 OFFSET $3`,
		dentistID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *repoPG) ListByRange(ctx context.Context, from, to wallclock.CivilDate) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointments
		 WHERE scheduled_at >= $1 AND scheduled_at < $2
		 ORDER BY scheduled_at, id`,
		from.At(0, 0).UTC(), to.AddDays(1).At(0, 0).UTC())
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointments ORDER BY scheduled_at, id`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) collect(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
