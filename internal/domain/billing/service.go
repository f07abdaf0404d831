package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service records payments. Consultation payments settle a pending
// appointment at the doctor's rate; service payments charge the catalog
// price directly.
type Service struct {
	transactions TransactionRepository
	appointments AppointmentDirectory
	staff        StaffDirectory
	services     ServiceDirectory
	patients     PatientDirectory
	callers      CallerDirectory
	gateway      PaymentGateway
	tx           TxRunner
}

func NewService(
	transactions TransactionRepository,
	appointments AppointmentDirectory,
	staff StaffDirectory,
	services ServiceDirectory,
	patients PatientDirectory,
	callers CallerDirectory,
	gateway PaymentGateway,
	tx TxRunner,
) *Service {
	return &Service{
		transactions: transactions,
		appointments: appointments,
		staff:        staff,
		services:     services,
		patients:     patients,
		callers:      callers,
		gateway:      gateway,
		tx:           tx,
	}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx(ctx, fn)
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

// charge runs the card processor for CARD payments. CASH and an
// unconfigured gateway record the transaction without an external charge.
func (s *Service) charge(ctx context.Context, t *Transaction) error {
	if t.PaymentMethod != MethodCard || s.gateway == nil {
		return nil
	}
	ref, err := s.gateway.Charge(ctx, t.Amount, map[string]string{
		"patient_id": t.PatientID.String(),
	})
	if err != nil {
		return err
	}
	t.ProviderRef = &ref
	return nil
}

// PayAppointment settles a pending appointment: the booking flips to
// COMPLETED and the doctor's consultation rate is recorded, atomically.
func (s *Service) PayAppointment(ctx context.Context, callerID, appointmentID uuid.UUID, req PaymentRequest) (*Transaction, error) {
	if !ValidMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: payment_method must be CASH or CARD", ErrInvalid)
	}

	var t *Transaction
	err := s.inTx(ctx, func(ctx context.Context) error {
		visit, err := s.appointments.Complete(ctx, appointmentID)
		if err != nil {
			return err
		}
		rate, err := s.staff.DoctorRate(ctx, visit.DoctorID)
		if err != nil {
			return err
		}
		t = &Transaction{
			PatientID:     visit.PatientID,
			Amount:        rate,
			PaymentMethod: req.PaymentMethod,
			DoctorID:      &visit.DoctorID,
		}
		if err := s.charge(ctx, t); err != nil {
			return err
		}
		return s.transactions.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// PayService records a payment for a catalog service at its listed price.
func (s *Service) PayService(ctx context.Context, callerID uuid.UUID, req ServicePaymentRequest) (*Transaction, error) {
	if !ValidMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: payment_method must be CASH or CARD", ErrInvalid)
	}
	if req.PatientID == uuid.Nil || req.ServiceID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id and service_id are required", ErrInvalid)
	}
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}

	ok, err := s.patients.PatientExists(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPatientNotFound
	}
	price, err := s.services.ServicePrice(ctx, req.ServiceID, clinicID)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		PatientID:     req.PatientID,
		Amount:        price,
		PaymentMethod: req.PaymentMethod,
		ServiceID:     &req.ServiceID,
	}
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.charge(ctx, t); err != nil {
			return err
		}
		return s.transactions.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Lookup returns a transaction by id without clinic scoping. Results
// filing relies on it to locate the paid visit and applies its own
// clinic checks.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.transactions.Get(ctx, id)
}

// Get returns a transaction within the caller's clinic scope.
func (s *Service) Get(ctx context.Context, callerID, id uuid.UUID) (*Transaction, error) {
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.transactions.GetInClinic(ctx, id, clinicID)
}

// List returns the clinic's transactions, optionally narrowed to DOCTOR or
// SERVICES payments.
func (s *Service) List(ctx context.Context, callerID uuid.UUID, payFor string, limit, offset int) ([]*Transaction, int, error) {
	if payFor != "" && payFor != PayForDoctor && payFor != PayForServices {
		return nil, 0, fmt.Errorf("%w: pay_for must be DOCTOR or SERVICES", ErrInvalid)
	}
	clinicID, err := s.callerClinic(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.transactions.ListByClinic(ctx, clinicID, payFor, limit, offset)
}
