package registry

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentms/dentms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, full_name, phone, email, created_at`

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.FullName, &p.Phone, &p.Email, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY full_name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.FullName, &p.Phone, &p.Email, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &p)
	}
	return items, total, rows.Err()
}

// =========== Dentist Repository ===========

type dentistRepoPG struct{ pool *pgxpool.Pool }

func NewDentistRepoPG(pool *pgxpool.Pool) DentistRepository { return &dentistRepoPG{pool: pool} }

func (r *dentistRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const dentistCols = `id, full_name, specialty, created_at`

func (r *dentistRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Dentist, error) {
	var d Dentist
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+dentistCols+` FROM dentists WHERE id = $1`, id).
		Scan(&d.ID, &d.FullName, &d.Specialty, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dentistRepoPG) List(ctx context.Context, limit, offset int) ([]*Dentist, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dentists`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+dentistCols+` FROM dentists ORDER BY full_name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Dentist
	for rows.Next() {
		var d Dentist
		if err := rows.Scan(&d.ID, &d.FullName, &d.Specialty, &d.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &d)
	}
	return items, total, rows.Err()
}
