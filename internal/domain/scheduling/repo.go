package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ScheduleRepository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	GetByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Time) (*Schedule, error)
	ExistsByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Time) (bool, error)
	Update(ctx context.Context, s *Schedule) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Schedule, int, error)
	AllByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Schedule, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// ExistsConflict reports whether the doctor has a booking starting in
	// [lo, hi] on that date, or the patient already booked the doctor
	// that day. excludeID skips the appointment being rescheduled.
	ExistsConflict(ctx context.Context, doctorID, patientID uuid.UUID, date time.Time, lo, hi Clock, excludeID uuid.UUID) (bool, error)
	ExistsForDoctorOnDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (bool, error)
	// ListByDoctorDayStatus returns matching appointments ordered
	// ascending by start time.
	ListByDoctorDayStatus(ctx context.Context, doctorID uuid.UUID, date time.Time, status string) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error)
}

// DoctorDirectory resolves doctors from the staff roster. Implementations
// return ErrNotFound when no active doctor matches.
type DoctorDirectory interface {
	// DoctorByUserID maps a doctor's user account to their employee id.
	DoctorByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	DoctorExists(ctx context.Context, doctorID uuid.UUID) (bool, error)
}

// TxRunner executes fn inside a single database transaction. A nil
// runner executes fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error
