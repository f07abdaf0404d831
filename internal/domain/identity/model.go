package identity

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// phonePattern matches Uzbek MSISDNs, the only format accepted on signup.
var phonePattern = regexp.MustCompile(`^\+998\d{9}$`)

// ValidPhone reports whether v is an accepted phone number.
func ValidPhone(v string) bool {
	return phonePattern.MatchString(v)
}

// User maps to the users table. PasswordHash never leaves the API.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Gender       bool       `db:"gender" json:"gender"`
	Address      string     `db:"address" json:"address"`
	PhoneNumber  string     `db:"phone_number" json:"phone_number"`
	BirthDate    time.Time  `db:"birth_date" json:"birth_date"`
	Role         string     `db:"role" json:"role"`
	ClinicID     *uuid.UUID `db:"clinic_id" json:"clinic_id,omitempty"`
	Deleted      bool       `db:"deleted" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserRequest is the create payload. BirthDate is a "2006-01-02" date.
type UserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Gender      *bool  `json:"gender"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	BirthDate   string `json:"birth_date"`
}

// UserUpdateRequest patches a user; nil fields are left unchanged.
type UserUpdateRequest struct {
	Username    *string `json:"username"`
	Password    *string `json:"password"`
	FullName    *string `json:"full_name"`
	Gender      *bool   `json:"gender"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phone_number"`
	BirthDate   *string `json:"birth_date"`
}

// LoginRequest carries username/password credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token to exchange for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
