package billing

import (
	"time"

	"github.com/google/uuid"
)

// Payment methods.
const (
	MethodCash = "CASH"
	MethodCard = "CARD"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m string) bool {
	return m == MethodCash || m == MethodCard
}

// List filters: transactions paying a doctor's consultation vs a catalog
// service.
const (
	PayForDoctor   = "DOCTOR"
	PayForServices = "SERVICES"
)

// Transaction maps to the transactions table. Exactly one of DoctorID and
// ServiceID is set: a consultation payment names the doctor, a service
// payment names the catalog service.
type Transaction struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	Amount        float64    `db:"amount" json:"amount"`
	PaymentMethod string     `db:"payment_method" json:"payment_method"`
	DoctorID      *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	ServiceID     *uuid.UUID `db:"service_id" json:"service_id,omitempty"`
	// ProviderRef carries the Stripe payment intent id for CARD payments.
	ProviderRef *string   `db:"provider_ref" json:"provider_ref,omitempty"`
	Deleted     bool      `db:"deleted" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// PaymentRequest selects the payment method for an appointment payment.
type PaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// ServicePaymentRequest records a walk-in payment for a catalog service.
type ServicePaymentRequest struct {
	PatientID     uuid.UUID `json:"patient_id"`
	ServiceID     uuid.UUID `json:"service_id"`
	PaymentMethod string    `json:"payment_method"`
}
