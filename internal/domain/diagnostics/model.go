package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

// Result types. A doctor files a DIAGNOSIS against their own paid
// consultation; laboratory staff file an ANALYSIS against a paid
// catalog service.
const (
	TypeDiagnosis = "DIAGNOSIS"
	TypeAnalysis  = "ANALYSIS"
)

// Result maps to the diagnosis table. DoctorID is the filing employee,
// which for an ANALYSIS is the laboratory worker's employee record.
type Result struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Type      string    `db:"type" json:"type"`
	Result    string    `db:"result" json:"result"`
	Deleted   bool      `db:"deleted" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ResultRequest files a result against a paid transaction.
type ResultRequest struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Result        string    `json:"result"`
}

// ResultUpdateRequest replaces the result text.
type ResultUpdateRequest struct {
	Result string `json:"result"`
}
