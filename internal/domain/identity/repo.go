package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository is the persistence boundary for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// ExistsTaken reports whether the username or phone number is already
	// used by a live user other than excludeID.
	ExistsTaken(ctx context.Context, username, phone string, excludeID uuid.UUID) (bool, error)
	// List returns live users, newest first. A non-nil clinicID restricts
	// the result to that clinic's users.
	List(ctx context.Context, clinicID *uuid.UUID, limit, offset int) ([]*User, int, error)
}
