package identity

import "errors"

// ErrNotFound is returned when a user does not exist or is out of the
// caller's scope.
var ErrNotFound = errors.New("user not found")

// ErrUserExists is returned when a username or phone number is already taken.
var ErrUserExists = errors.New("user already exists")

// ErrUserInvalid is returned when a create or update payload fails validation.
var ErrUserInvalid = errors.New("invalid user data")

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")
