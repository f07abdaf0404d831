package organization

import (
	"context"

	"github.com/google/uuid"
)

// ClinicRepository is the persistence boundary for clinics.
type ClinicRepository interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// ExistsTaken reports whether any live clinic other than excludeID
	// already uses one of the given identifying fields.
	ExistsTaken(ctx context.Context, name, address, phone, email string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Clinic, int, error)
}

// DepartmentRepository is the persistence boundary for departments.
type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	Update(ctx context.Context, d *Department) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ExistsByNameAndClinic(ctx context.Context, name string, clinicID, excludeID uuid.UUID) (bool, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Department, int, error)
}

// CallerDirectory resolves the clinic an authenticated user belongs to.
// The operator account has none.
type CallerDirectory interface {
	ClinicOf(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
}
