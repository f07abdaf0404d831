package diagnostics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/auth"
)

// Service files diagnostic results against paid transactions. Doctors
// file a DIAGNOSIS for their own consultations; laboratory staff file an
// ANALYSIS for catalog services paid within their clinic.
type Service struct {
	results      ResultRepository
	transactions TransactionDirectory
	staff        StaffDirectory
	services     ServiceDirectory
	callers      CallerDirectory
	now          func() time.Time
}

func NewService(
	results ResultRepository,
	transactions TransactionDirectory,
	staff StaffDirectory,
	services ServiceDirectory,
	callers CallerDirectory,
) *Service {
	return &Service{
		results:      results,
		transactions: transactions,
		staff:        staff,
		services:     services,
		callers:      callers,
		now:          time.Now,
	}
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

// Create files a result for the patient behind the transaction. The
// caller's role decides the result type and whom it is attributed to.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, callerRole string, req ResultRequest) (*Result, error) {
	if strings.TrimSpace(req.Result) == "" {
		return nil, fmt.Errorf("%w: result text is required", ErrInvalid)
	}
	if req.TransactionID == uuid.Nil {
		return nil, fmt.Errorf("%w: transaction_id is required", ErrInvalid)
	}

	visit, err := s.transactions.Visit(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}

	var filer uuid.UUID
	var kind string
	if callerRole == auth.RoleDoctor {
		employeeID, err := s.staff.EmployeeOf(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("%w: caller has no employee record", ErrInvalid)
		}
		if visit.DoctorID == nil || *visit.DoctorID != employeeID {
			return nil, ErrForbidden
		}
		filer = employeeID
		kind = TypeDiagnosis
	} else {
		if visit.ServiceID == nil {
			return nil, fmt.Errorf("%w: transaction does not pay for a service", ErrInvalid)
		}
		clinicID, err := s.callerClinic(ctx, callerID)
		if err != nil {
			return nil, err
		}
		ok, err := s.services.ServiceInClinic(ctx, *visit.ServiceID, clinicID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
		employeeID, err := s.staff.EmployeeOf(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("%w: caller has no employee record", ErrInvalid)
		}
		filer = employeeID
		kind = TypeAnalysis
	}

	taken, err := s.results.ExistsForDay(ctx, visit.PatientID, filer, s.now())
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}

	res := &Result{
		PatientID: visit.PatientID,
		DoctorID:  filer,
		Type:      kind,
		Result:    req.Result,
	}
	if err := s.results.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// own returns the result only when it was filed by the caller's employee
// record.
func (s *Service) own(ctx context.Context, callerID, id uuid.UUID) (*Result, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}
	res, err := s.results.GetInClinic(ctx, id, clinicID)
	if err != nil {
		return nil, err
	}
	employeeID, err := s.staff.EmployeeOf(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("%w: caller has no employee record", ErrInvalid)
	}
	if res.DoctorID != employeeID {
		return nil, ErrNotFound
	}
	return res, nil
}

// Update replaces the result text. Only the filing employee may amend it.
func (s *Service) Update(ctx context.Context, callerID, id uuid.UUID, req ResultUpdateRequest) (*Result, error) {
	if strings.TrimSpace(req.Result) == "" {
		return nil, fmt.Errorf("%w: result text is required", ErrInvalid)
	}
	res, err := s.own(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	res.Result = req.Result
	if err := s.results.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Delete soft-deletes a result. Only the filing employee may remove it.
func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	res, err := s.own(ctx, callerID, id)
	if err != nil {
		return err
	}
	return s.results.SoftDelete(ctx, res.ID)
}

// Get returns a result within the caller's clinic scope.
func (s *Service) Get(ctx context.Context, callerID, id uuid.UUID) (*Result, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.results.GetInClinic(ctx, id, clinicID)
}

// List returns the clinic's results, newest first.
func (s *Service) List(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*Result, int, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.results.ListByClinic(ctx, clinicID, limit, offset)
}

// ListByPatient returns a patient's results filed within the caller's
// clinic.
func (s *Service) ListByPatient(ctx context.Context, callerID, patientID uuid.UUID, limit, offset int) ([]*Result, int, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.results.ListByPatient(ctx, patientID, clinicID, limit, offset)
}
