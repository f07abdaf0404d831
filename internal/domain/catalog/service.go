package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service implements the clinic's priced service catalog.
type Service struct {
	services    ServiceRepository
	callers     CallerDirectory
	departments DepartmentDirectory
}

func NewService(services ServiceRepository, callers CallerDirectory, departments DepartmentDirectory) *Service {
	return &Service{services: services, callers: callers, departments: departments}
}

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

func (s *Service) Create(ctx context.Context, callerID uuid.UUID, req ServiceRequest) (*MedicalService, error) {
	if req.Name == "" || req.DepartmentID == uuid.Nil {
		return nil, fmt.Errorf("%w: name and department_id are required", ErrInvalid)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalid)
	}
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}

	ok, err := s.departments.DepartmentExists(ctx, req.DepartmentID, clinicID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDepartmentNotFound
	}

	taken, err := s.services.ExistsByNameAndDepartment(ctx, req.Name, req.DepartmentID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrServiceExists
	}

	svc := &MedicalService{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		DepartmentID: req.DepartmentID,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) Update(ctx context.Context, callerID, id uuid.UUID, req ServiceUpdateRequest) (*MedicalService, error) {
	svc, err := s.Get(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != svc.Name {
		taken, err := s.services.ExistsByNameAndDepartment(ctx, *req.Name, svc.DepartmentID, svc.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrServiceExists
		}
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", ErrInvalid)
		}
		svc.Price = *req.Price
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if _, err := s.Get(ctx, callerID, id); err != nil {
		return err
	}
	return s.services.SoftDelete(ctx, id)
}

func (s *Service) Get(ctx context.Context, callerID, id uuid.UUID) (*MedicalService, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.services.GetInClinic(ctx, id, clinicID)
}

func (s *Service) List(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*MedicalService, int, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.services.ListByClinic(ctx, clinicID, limit, offset)
}

// ServiceInClinic fetches a service constrained to a known clinic. Staff
// onboarding and billing go through here.
func (s *Service) ServiceInClinic(ctx context.Context, id, clinicID uuid.UUID) (*MedicalService, error) {
	return s.services.GetInClinic(ctx, id, clinicID)
}
