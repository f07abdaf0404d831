package diagnostics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResultRepository is the persistence boundary for diagnostic results.
// Clinic scoping runs through the filing employee's user record.
type ResultRepository interface {
	Create(ctx context.Context, r *Result) error
	GetInClinic(ctx context.Context, id, clinicID uuid.UUID) (*Result, error)
	Update(ctx context.Context, r *Result) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// ExistsForDay reports whether a live result for the patient by the
	// same employee was already filed on the given calendar day.
	ExistsForDay(ctx context.Context, patientID, doctorID uuid.UUID, day time.Time) (bool, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]*Result, int, error)
	ListByPatient(ctx context.Context, patientID, clinicID uuid.UUID, limit, offset int) ([]*Result, int, error)
}

// PaidVisit is the slice of a transaction that results filing needs.
type PaidVisit struct {
	PatientID uuid.UUID
	DoctorID  *uuid.UUID
	ServiceID *uuid.UUID
}

// TransactionDirectory resolves the paid visit a result is filed against.
type TransactionDirectory interface {
	Visit(ctx context.Context, transactionID uuid.UUID) (*PaidVisit, error)
}

// StaffDirectory resolves the caller's employee record.
type StaffDirectory interface {
	EmployeeOf(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// ServiceDirectory answers whether a catalog service belongs to a clinic.
type ServiceDirectory interface {
	ServiceInClinic(ctx context.Context, serviceID, clinicID uuid.UUID) (bool, error)
}

// CallerDirectory resolves the clinic an authenticated user belongs to.
type CallerDirectory interface {
	ClinicOf(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
}
