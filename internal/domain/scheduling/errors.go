package scheduling

import "errors"

var (
	// ErrNotFound covers a missing doctor, schedule or appointment,
	// including records outside the caller's scope.
	ErrNotFound = errors.New("not found")

	// ErrScheduleInvalid signals a structurally unsound working schedule:
	// day beyond the booking horizon, start after break, or break running
	// past the end of the day.
	ErrScheduleInvalid = errors.New("schedule is not valid")

	// ErrScheduleConflict signals that the doctor already has a schedule
	// for that day.
	ErrScheduleConflict = errors.New("schedule already exists for this day")

	// ErrScheduleHasAppointments blocks deleting a schedule while
	// appointments exist for the doctor on that day.
	ErrScheduleHasAppointments = errors.New("schedule has booked appointments")

	// ErrSlotTaken signals an appointment collision: another booking
	// starts within the collision window, or the patient already has a
	// booking with this doctor that day.
	ErrSlotTaken = errors.New("appointment slot is already taken")

	// ErrOutsideWorkingHours signals that the requested slot does not fit
	// the doctor's working hours or overlaps the break.
	ErrOutsideWorkingHours = errors.New("appointment is outside working hours")

	// ErrNotPending guards transitions that only apply to PENDING
	// appointments, such as completing one on payment.
	ErrNotPending = errors.New("appointment is not pending")
)
