package organization

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
)

// Service implements clinic and department management.
type Service struct {
	clinics     ClinicRepository
	departments DepartmentRepository
	callers     CallerDirectory
}

func NewService(clinics ClinicRepository, departments DepartmentRepository, callers CallerDirectory) *Service {
	return &Service{clinics: clinics, departments: departments, callers: callers}
}

// -- Clinics --

func (s *Service) CreateClinic(ctx context.Context, req ClinicRequest) (*Clinic, error) {
	if req.Name == "" || req.Address == "" || req.PhoneNumber == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name, address, phone_number and email are required", ErrInvalid)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalid)
	}

	taken, err := s.clinics.ExistsTaken(ctx, req.Name, req.Address, req.PhoneNumber, req.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrClinicExists
	}

	c := &Clinic{
		Name:        req.Name,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	}
	if err := s.clinics.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateClinic(ctx context.Context, id uuid.UUID, req ClinicUpdateRequest) (*Clinic, error) {
	c, err := s.clinics.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.PhoneNumber != nil {
		c.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return nil, fmt.Errorf("%w: malformed email", ErrInvalid)
		}
		c.Email = *req.Email
	}
	if c.Name == "" || c.Address == "" || c.PhoneNumber == "" || c.Email == "" {
		return nil, fmt.Errorf("%w: identifying fields must not be empty", ErrInvalid)
	}

	taken, err := s.clinics.ExistsTaken(ctx, c.Name, c.Address, c.PhoneNumber, c.Email, c.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrClinicExists
	}

	if err := s.clinics.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clinics.GetByID(ctx, id); err != nil {
		return err
	}
	return s.clinics.SoftDelete(ctx, id)
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.clinics.GetByID(ctx, id)
}

func (s *Service) ListClinics(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	return s.clinics.List(ctx, limit, offset)
}

// ClinicExists reports whether a live clinic with the given id exists. It
// backs cross-domain checks like staff onboarding.
func (s *Service) ClinicExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.clinics.GetByID(ctx, id)
	if errors.Is(err, ErrClinicNotFound) {
		return false, nil
	}
	return err == nil, err
}

// -- Departments --

// callerClinic resolves the clinic every department operation is scoped to.
func (s *Service) callerClinic(ctx context.Context, callerID uuid.UUID) (uuid.UUID, error) {
	clinicID, err := s.callers.ClinicOf(ctx, callerID)
	if err != nil {
		return uuid.Nil, err
	}
	if clinicID == nil {
		return uuid.Nil, fmt.Errorf("%w: caller is not attached to a clinic", ErrInvalid)
	}
	return *clinicID, nil
}

func (s *Service) CreateDepartment(ctx context.Context, callerID uuid.UUID, req DepartmentRequest) (*Department, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}

	taken, err := s.departments.ExistsByNameAndClinic(ctx, req.Name, clinicID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDepartmentExists
	}

	d := &Department{Name: req.Name, ClinicID: clinicID}
	if err := s.departments.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) UpdateDepartment(ctx context.Context, callerID, id uuid.UUID, req DepartmentRequest) (*Department, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	d, err := s.GetDepartment(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.departments.ExistsByNameAndClinic(ctx, req.Name, d.ClinicID, d.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDepartmentExists
	}

	d.Name = req.Name
	if err := s.departments.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.GetDepartment(ctx, callerID, id); err != nil {
		return err
	}
	return s.departments.SoftDelete(ctx, id)
}

func (s *Service) GetDepartment(ctx context.Context, callerID, id uuid.UUID) (*Department, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}
	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.ClinicID != clinicID {
		return nil, ErrDepartmentNotFound
	}
	return d, nil
}

func (s *Service) ListDepartments(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*Department, int, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.departments.ListByClinic(ctx, clinicID, limit, offset)
}

// DepartmentInClinic fetches a department constrained to a known clinic.
// Catalog lookups go through here.
func (s *Service) DepartmentInClinic(ctx context.Context, id, clinicID uuid.UUID) (*Department, error) {
	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.ClinicID != clinicID {
		return nil, ErrDepartmentNotFound
	}
	return d, nil
}
