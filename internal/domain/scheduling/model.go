package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. COMPLETED is terminal and set when payment is
// recorded; there is no cancellation state beyond soft delete.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted
}

// Schedule maps to the schedule table: one doctor's working window and
// lunch break for a single calendar day.
type Schedule struct {
	ID         uuid.UUID `db:"id" json:"id"`
	DoctorID   uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Day        time.Time `db:"day" json:"day"`
	StartTime  Clock     `db:"start_time" json:"start_time"`
	EndTime    Clock     `db:"end_time" json:"end_time"`
	BreakStart Clock     `db:"break_start" json:"break_start"`
	BreakEnd   Clock     `db:"break_end" json:"break_end"`
	Deleted    bool      `db:"deleted" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Appointment maps to the appointment table: a fixed 30-minute visit
// booked by a patient with a doctor.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime Clock     `db:"start_time" json:"start_time"`
	Status    string    `db:"status" json:"status"`
	Deleted   bool      `db:"deleted" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FreeInterval is a derived open booking span within one schedule day.
// Never persisted.
type FreeInterval struct {
	From Clock `json:"from"`
	Till Clock `json:"till"`
}

// DayAvailability is one schedule day's free intervals, reported by the
// free-time query.
type DayAvailability struct {
	Date      string         `json:"date"`
	FreeTimes []FreeInterval `json:"free_times"`
}

// ScheduleRequest is the create/update payload for a working schedule.
// On create every field is required; on update absent fields keep their
// current value.
type ScheduleRequest struct {
	Day        string `json:"day"`
	StartTime  *Clock `json:"start_time"`
	EndTime    *Clock `json:"end_time"`
	BreakStart *Clock `json:"break_start"`
}

// AppointmentRequest is the create/update payload for an appointment.
// DoctorID is only honored on create; reschedules keep the doctor.
type AppointmentRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	StartTime *Clock    `json:"start_time"`
}
