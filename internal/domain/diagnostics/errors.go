package diagnostics

import "errors"

var (
	ErrNotFound            = errors.New("result not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicate           = errors.New("result already filed for this patient today")
	ErrForbidden           = errors.New("transaction does not belong to the caller")
	ErrInvalid             = errors.New("invalid result payload")
)
