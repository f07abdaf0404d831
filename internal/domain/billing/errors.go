package billing

import "errors"

// ErrNotFound is returned when a transaction does not exist or is out of
// the caller's clinic.
var ErrNotFound = errors.New("transaction not found")

// ErrAppointmentNotFound is returned when the appointment being paid does
// not exist.
var ErrAppointmentNotFound = errors.New("appointment not found")

// ErrAlreadyPaid is returned when the appointment has already been
// completed and paid.
var ErrAlreadyPaid = errors.New("appointment already paid")

// ErrPatientNotFound is returned when the paying patient does not exist.
var ErrPatientNotFound = errors.New("patient not found")

// ErrServiceNotFound is returned when the paid service does not exist in
// the caller's clinic.
var ErrServiceNotFound = errors.New("service not found")

// ErrInvalid is returned when a payload fails validation.
var ErrInvalid = errors.New("invalid payment data")

// ErrPaymentFailed is returned when the card processor rejects the charge.
var ErrPaymentFailed = errors.New("payment failed")
