package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/auth"
)

// Service implements employee onboarding and management. Creating an
// employee also creates their user account; offboarding retires both.
type Service struct {
	employees EmployeeRepository
	users     UserDirectory
	services  ServiceDirectory
	tx        TxRunner
}

func NewService(employees EmployeeRepository, users UserDirectory, services ServiceDirectory, tx TxRunner) *Service {
	return &Service{employees: employees, users: users, services: services, tx: tx}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx(ctx, fn)
}

func (s *Service) callerClinic(ctx context.Context, callerID uuid.UUID) (uuid.UUID, error) {
	clinicID, err := s.users.ClinicOf(ctx, callerID)
	if err != nil {
		return uuid.Nil, err
	}
	if clinicID == nil {
		return uuid.Nil, fmt.Errorf("%w: caller is not attached to a clinic", ErrEmployeeInvalid)
	}
	return *clinicID, nil
}

// validateRole enforces the billing shape of the record: doctors carry a
// consultation price and a catalog service, nobody else does.
func validateRole(req EmployeeRequest) error {
	isDoctor := req.Role == auth.RoleDoctor
	hasPrice := req.ConsultantPrice != nil
	hasService := req.ServiceID != nil

	if isDoctor && (!hasPrice || !hasService) {
		return fmt.Errorf("%w: a doctor requires consultant_price and service_id", ErrEmployeeInvalid)
	}
	if !isDoctor && (hasPrice || hasService) {
		return fmt.Errorf("%w: only doctors carry consultant_price and service_id", ErrEmployeeInvalid)
	}
	if hasPrice && *req.ConsultantPrice <= 0 {
		return fmt.Errorf("%w: consultant_price must be positive", ErrEmployeeInvalid)
	}
	return nil
}

// Create provisions a user account with the given role in the caller's
// clinic and records the employment in the same unit of work.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, req EmployeeRequest) (*Employee, error) {
	if req.Education == "" {
		return nil, fmt.Errorf("%w: education is required", ErrEmployeeInvalid)
	}
	if req.Experience < 0 {
		return nil, fmt.Errorf("%w: experience must not be negative", ErrEmployeeInvalid)
	}
	if req.Role == auth.RolePatient || req.Role == auth.RoleDev {
		return nil, fmt.Errorf("%w: %s is not an employee role", ErrEmployeeInvalid, req.Role)
	}
	if err := validateRole(req); err != nil {
		return nil, err
	}

	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if req.ServiceID != nil {
		ok, err := s.services.ServiceExists(ctx, *req.ServiceID, clinicID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrServiceNotFound
		}
	}

	emp := &Employee{
		Experience:      req.Experience,
		Education:       req.Education,
		ConsultantPrice: req.ConsultantPrice,
		ServiceID:       req.ServiceID,
	}
	err = s.inTx(ctx, func(ctx context.Context) error {
		userID, err := s.users.Provision(ctx, req.User, req.Role, &clinicID)
		if err != nil {
			return err
		}
		emp.UserID = userID
		return s.employees.Create(ctx, emp)
	})
	if err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *Service) Update(ctx context.Context, callerID, id uuid.UUID, req EmployeeUpdateRequest) (*Employee, error) {
	emp, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if req.Experience != nil {
		if *req.Experience < 0 {
			return nil, fmt.Errorf("%w: experience must not be negative", ErrEmployeeInvalid)
		}
		emp.Experience = *req.Experience
	}
	if req.Education != nil {
		if *req.Education == "" {
			return nil, fmt.Errorf("%w: education must not be empty", ErrEmployeeInvalid)
		}
		emp.Education = *req.Education
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Delete retires the employment record and the user account behind it.
func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	emp, err := s.Get(ctx, callerID, id)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.employees.SoftDelete(ctx, emp.ID); err != nil {
			return err
		}
		return s.users.Remove(ctx, emp.UserID)
	})
}

func (s *Service) Get(ctx context.Context, callerID, id uuid.UUID) (*Employee, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.employees.GetInClinic(ctx, id, clinicID)
}

func (s *Service) List(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*Employee, int, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.employees.ListByClinic(ctx, clinicID, limit, offset)
}

// DoctorByUserID resolves the employee id behind a DOCTOR user account.
// The scheduling engine keys schedules by employee id.
func (s *Service) DoctorByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return s.employees.DoctorByUserID(ctx, userID)
}

// DoctorExists reports whether id names a live DOCTOR employee.
func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.employees.DoctorExists(ctx, id)
}

// DoctorRate returns the consultation price a doctor bills at.
func (s *Service) DoctorRate(ctx context.Context, id uuid.UUID) (float64, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if emp.ConsultantPrice == nil {
		return 0, fmt.Errorf("%w: employee has no consultation price", ErrEmployeeInvalid)
	}
	return *emp.ConsultantPrice, nil
}

// EmployeeOf returns the employment record behind a user account.
// Diagnostics uses it to attribute results to the filing staff member.
func (s *Service) EmployeeOf(ctx context.Context, userID uuid.UUID) (*Employee, error) {
	return s.employees.GetByUserID(ctx, userID)
}
