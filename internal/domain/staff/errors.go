package staff

import "errors"

// ErrNotFound is returned when an employee does not exist or is out of the
// caller's clinic.
var ErrNotFound = errors.New("employee not found")

// ErrEmployeeInvalid is returned when a payload fails validation,
// including the doctor price/service rule.
var ErrEmployeeInvalid = errors.New("invalid employee data")

// ErrServiceNotFound is returned when the doctor's billing service does not
// exist in the caller's clinic.
var ErrServiceNotFound = errors.New("service not found")

// ErrUserTaken is returned when the new employee's username or phone number
// is already in use. The identity adapter translates its conflict into this.
var ErrUserTaken = errors.New("user already exists")
