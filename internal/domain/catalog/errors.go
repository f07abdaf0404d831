package catalog

import "errors"

// ErrNotFound is returned when a service does not exist or is out of the
// caller's clinic.
var ErrNotFound = errors.New("service not found")

// ErrServiceExists is returned when the department already offers a service
// with that name.
var ErrServiceExists = errors.New("service already exists")

// ErrDepartmentNotFound is returned when the target department does not
// exist in the caller's clinic.
var ErrDepartmentNotFound = errors.New("department not found")

// ErrInvalid is returned when a payload fails validation.
var ErrInvalid = errors.New("invalid service data")
