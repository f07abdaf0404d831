package organization

import "errors"

// ErrClinicNotFound is returned when a clinic does not exist.
var ErrClinicNotFound = errors.New("clinic not found")

// ErrClinicExists is returned when another clinic already uses the name,
// address, phone number or email.
var ErrClinicExists = errors.New("clinic already exists")

// ErrDepartmentNotFound is returned when a department does not exist or is
// out of the caller's clinic.
var ErrDepartmentNotFound = errors.New("department not found")

// ErrDepartmentExists is returned when the clinic already has a department
// with that name.
var ErrDepartmentExists = errors.New("department already exists")

// ErrInvalid is returned when a payload fails validation.
var ErrInvalid = errors.New("invalid organization data")
