package catalog

import (
	"time"

	"github.com/google/uuid"
)

// MedicalService maps to the medical_service table. A service belongs to a
// department and is priced in the clinic's currency.
type MedicalService struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Price        float64   `db:"price" json:"price"`
	DepartmentID uuid.UUID `db:"department_id" json:"department_id"`
	Deleted      bool      `db:"deleted" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ServiceRequest is the create payload.
type ServiceRequest struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	DepartmentID uuid.UUID `json:"department_id"`
}

// ServiceUpdateRequest patches a service; nil fields are left unchanged.
type ServiceUpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}
