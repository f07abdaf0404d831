package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/auth"
)

// Service implements account management and login on top of a UserRepository.
type Service struct {
	users  UserRepository
	issuer *auth.Issuer

	now func() time.Time
}

func NewService(users UserRepository, issuer *auth.Issuer) *Service {
	return &Service{users: users, issuer: issuer, now: time.Now}
}

// Login verifies credentials and returns a fresh token pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*auth.TokenPair, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		// Not-found and bad-password are indistinguishable to the caller.
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issuer.IssuePair(u.ID.String(), u.Username, u.Role)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*auth.TokenPair, error) {
	if req.RefreshToken == "" {
		return nil, ErrInvalidCredentials
	}
	pair, err := s.issuer.Refresh(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return pair, nil
}

// CreateUser registers a patient account.
func (s *Service) CreateUser(ctx context.Context, req UserRequest) (*User, error) {
	return s.Provision(ctx, req, auth.RolePatient, nil)
}

// Provision creates an account with an explicit role and clinic; staff
// onboarding goes through here.
func (s *Service) Provision(ctx context.Context, req UserRequest, role string, clinicID *uuid.UUID) (*User, error) {
	if req.Username == "" || req.Password == "" || req.FullName == "" ||
		req.Address == "" || req.Gender == nil {
		return nil, fmt.Errorf("%w: username, password, full_name, address and gender are required", ErrUserInvalid)
	}
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrUserInvalid, role)
	}
	if !ValidPhone(req.PhoneNumber) {
		return nil, fmt.Errorf("%w: phone number must match +998XXXXXXXXX", ErrUserInvalid)
	}
	birth, err := s.parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsTaken(ctx, req.Username, req.PhoneNumber, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		Gender:       *req.Gender,
		Address:      req.Address,
		PhoneNumber:  req.PhoneNumber,
		BirthDate:    birth,
		Role:         role,
		ClinicID:     clinicID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser returns a user within the caller's clinic scope.
func (s *Service) GetUser(ctx context.Context, callerID, id uuid.UUID) (*User, error) {
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inScope(caller, u) {
		return nil, ErrNotFound
	}
	return u, nil
}

// UpdateUser patches a user. Username and phone changes re-check uniqueness.
func (s *Service) UpdateUser(ctx context.Context, callerID, id uuid.UUID, req UserUpdateRequest) (*User, error) {
	u, err := s.GetUser(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	username, phone := u.Username, u.PhoneNumber
	if req.Username != nil {
		if *req.Username == "" {
			return nil, fmt.Errorf("%w: username must not be empty", ErrUserInvalid)
		}
		username = *req.Username
	}
	if req.PhoneNumber != nil {
		if !ValidPhone(*req.PhoneNumber) {
			return nil, fmt.Errorf("%w: phone number must match +998XXXXXXXXX", ErrUserInvalid)
		}
		phone = *req.PhoneNumber
	}
	if username != u.Username || phone != u.PhoneNumber {
		taken, err := s.users.ExistsTaken(ctx, username, phone, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUserExists
		}
	}
	u.Username = username
	u.PhoneNumber = phone

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Gender != nil {
		u.Gender = *req.Gender
	}
	if req.Address != nil {
		u.Address = *req.Address
	}
	if req.BirthDate != nil {
		birth, err := s.parseBirthDate(*req.BirthDate)
		if err != nil {
			return nil, err
		}
		u.BirthDate = birth
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser soft-deletes a user within the caller's clinic scope.
func (s *Service) DeleteUser(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.GetUser(ctx, callerID, id); err != nil {
		return err
	}
	return s.users.SoftDelete(ctx, id)
}

// RemoveUser soft-deletes without a scope check. It backs staff offboarding,
// where the employee record has already been resolved in-clinic.
func (s *Service) RemoveUser(ctx context.Context, id uuid.UUID) error {
	return s.users.SoftDelete(ctx, id)
}

// ListUsers returns users visible to the caller. Clinic staff see their own
// clinic; the operator account sees everyone.
func (s *Service) ListUsers(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*User, int, error) {
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.users.List(ctx, caller.ClinicID, limit, offset)
}

// ClinicOf resolves the clinic a user account is attached to. Other
// domains consume it through their caller directories.
func (s *Service) ClinicOf(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.ClinicID, nil
}

// PatientExists reports whether a live patient account exists.
func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == auth.RolePatient, nil
}

func (s *Service) parseBirthDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: birth_date is required", ErrUserInvalid)
	}
	t, err := time.ParseInLocation(time.DateOnly, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: birth_date must be a YYYY-MM-DD date", ErrUserInvalid)
	}
	if !t.Before(s.now()) {
		return time.Time{}, fmt.Errorf("%w: birth_date must be in the past", ErrUserInvalid)
	}
	return t, nil
}

// inScope reports whether target is visible to caller. Callers without a
// clinic (the operator) see everyone.
func inScope(caller, target *User) bool {
	if caller.ClinicID == nil {
		return true
	}
	return target.ClinicID != nil && *target.ClinicID == *caller.ClinicID
}
