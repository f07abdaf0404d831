package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ServiceRepository is the persistence boundary for medical services.
// Clinic scoping goes through the owning department.
type ServiceRepository interface {
	Create(ctx context.Context, s *MedicalService) error
	// GetInClinic returns the service only when its department belongs to
	// the given clinic.
	GetInClinic(ctx context.Context, id, clinicID uuid.UUID) (*MedicalService, error)
	Update(ctx context.Context, s *MedicalService) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ExistsByNameAndDepartment(ctx context.Context, name string, departmentID, excludeID uuid.UUID) (bool, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*MedicalService, int, error)
}

// CallerDirectory resolves the clinic an authenticated user belongs to.
type CallerDirectory interface {
	ClinicOf(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
}

// DepartmentDirectory answers whether a department exists within a clinic.
type DepartmentDirectory interface {
	DepartmentExists(ctx context.Context, departmentID, clinicID uuid.UUID) (bool, error)
}
