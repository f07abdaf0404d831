package staff

import (
	"time"

	"github.com/google/uuid"
)

// Employee maps to the employee table. Doctors carry a consultation price
// and the catalog service they bill under; other staff carry neither.
type Employee struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	UserID          uuid.UUID  `db:"user_id" json:"user_id"`
	Experience      float64    `db:"experience" json:"experience"`
	Education       string     `db:"education" json:"education"`
	ConsultantPrice *float64   `db:"consultant_price" json:"consultant_price,omitempty"`
	ServiceID       *uuid.UUID `db:"service_id" json:"service_id,omitempty"`
	Deleted         bool       `db:"deleted" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// UserPayload is the account half of an employee create. It mirrors the
// public registration payload.
type UserPayload struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Gender      *bool  `json:"gender"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	BirthDate   string `json:"birth_date"`
}

// EmployeeRequest is the create payload: a fresh user account plus the
// employment record.
type EmployeeRequest struct {
	User            UserPayload `json:"user"`
	Role            string      `json:"role"`
	Experience      float64     `json:"experience"`
	Education       string      `json:"education"`
	ConsultantPrice *float64    `json:"consultant_price"`
	ServiceID       *uuid.UUID  `json:"service_id"`
}

// EmployeeUpdateRequest patches the employment record; nil fields are left
// unchanged.
type EmployeeUpdateRequest struct {
	Experience *float64 `json:"experience"`
	Education  *string  `json:"education"`
}
