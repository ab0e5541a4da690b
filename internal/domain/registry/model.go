// Package registry exposes the patient and dentist directories as read-only
// lookups. The records are owned by other systems; this core only needs
// display names for calendar labels and the detail endpoints.
package registry

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Dentist struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
