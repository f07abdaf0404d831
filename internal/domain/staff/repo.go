package staff

import (
	"context"

	"github.com/google/uuid"
)

// EmployeeRepository is the persistence boundary for employees. Clinic
// scoping goes through the employee's user account.
type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	// GetInClinic returns the employee only when their user belongs to the
	// given clinic.
	GetInClinic(ctx context.Context, id, clinicID uuid.UUID) (*Employee, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Employee, int, error)
	// DoctorByUserID resolves the employee id behind a DOCTOR user.
	DoctorByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	// DoctorExists reports whether id names a live DOCTOR employee.
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserDirectory is the identity surface staff onboarding depends on:
// resolving the caller's clinic and creating or retiring the employee's
// user account.
type UserDirectory interface {
	ClinicOf(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
	Provision(ctx context.Context, p UserPayload, role string, clinicID *uuid.UUID) (uuid.UUID, error)
	Remove(ctx context.Context, userID uuid.UUID) error
}

// ServiceDirectory answers whether a catalog service exists within a clinic.
type ServiceDirectory interface {
	ServiceExists(ctx context.Context, serviceID, clinicID uuid.UUID) (bool, error)
}

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error
