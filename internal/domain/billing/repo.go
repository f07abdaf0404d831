package billing

import (
	"context"

	"github.com/google/uuid"
)

// TransactionRepository is the persistence boundary for transactions.
// Clinic scoping follows the paid party: the doctor's user for
// consultations, the service's department for catalog payments.
type TransactionRepository interface {
	Create(ctx context.Context, t *Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetInClinic(ctx context.Context, id, clinicID uuid.UUID) (*Transaction, error)
	// ListByClinic returns live transactions, newest first. payFor narrows
	// to DOCTOR or SERVICES payments; empty returns both.
	ListByClinic(ctx context.Context, clinicID uuid.UUID, payFor string, limit, offset int) ([]*Transaction, int, error)
}

// CompletedVisit is what billing needs to know about the appointment it
// just settled.
type CompletedVisit struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

// AppointmentDirectory settles the appointment being paid: it transitions
// the booking to COMPLETED and reports who was seen by whom.
type AppointmentDirectory interface {
	Complete(ctx context.Context, appointmentID uuid.UUID) (*CompletedVisit, error)
}

// StaffDirectory resolves a doctor's consultation rate.
type StaffDirectory interface {
	DoctorRate(ctx context.Context, doctorID uuid.UUID) (float64, error)
}

// ServiceDirectory resolves a catalog service's price within a clinic.
type ServiceDirectory interface {
	ServicePrice(ctx context.Context, serviceID, clinicID uuid.UUID) (float64, error)
}

// PatientDirectory answers whether a patient account exists.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CallerDirectory resolves the clinic an authenticated user belongs to.
type CallerDirectory interface {
	ClinicOf(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
}

// PaymentGateway charges a card through an external processor and returns
// a provider reference for the transaction record.
type PaymentGateway interface {
	Charge(ctx context.Context, amount float64, metadata map[string]string) (string, error)
}

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error
