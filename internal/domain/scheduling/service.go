package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/cache"
)

const freeTimesTTL = time.Minute

type Service struct {
	schedules    ScheduleRepository
	appointments AppointmentRepository
	doctors      DoctorDirectory
	tx           TxRunner
	cache        *cache.Cache
	now          func() time.Time
}

func NewService(schedules ScheduleRepository, appointments AppointmentRepository, doctors DoctorDirectory, tx TxRunner, c *cache.Cache) *Service {
	return &Service{
		schedules:    schedules,
		appointments: appointments,
		doctors:      doctors,
		tx:           tx,
		cache:        c,
		now:          time.Now,
	}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx(ctx, fn)
}

func freeTimesKey(doctorID uuid.UUID) string {
	return "freetimes:" + doctorID.String()
}

func (s *Service) invalidateFreeTimes(ctx context.Context, doctorID uuid.UUID) {
	s.cache.Delete(ctx, freeTimesKey(doctorID))
}

func parseDay(value string) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid day %q", ErrScheduleInvalid, value)
	}
	return day, nil
}

// today returns the current date truncated to midnight UTC, the
// reference point for the booking horizon.
func (s *Service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -- Schedules --

// CreateSchedule declares a working day for the doctor behind userID.
func (s *Service) CreateSchedule(ctx context.Context, userID uuid.UUID, req ScheduleRequest) (*Schedule, error) {
	if req.Day == "" || req.StartTime == nil || req.EndTime == nil || req.BreakStart == nil {
		return nil, fmt.Errorf("%w: day, start_time, end_time and break_start are required", ErrScheduleInvalid)
	}
	day, err := parseDay(req.Day)
	if err != nil {
		return nil, err
	}
	if err := ValidateSchedule(s.today(), day, *req.StartTime, *req.EndTime, *req.BreakStart); err != nil {
		return nil, err
	}
	doctorID, err := s.doctors.DoctorByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	exists, err := s.schedules.ExistsByDoctorAndDay(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrScheduleConflict
	}

	sched := &Schedule{
		DoctorID:   doctorID,
		Day:        day,
		StartTime:  *req.StartTime,
		EndTime:    *req.EndTime,
		BreakStart: *req.BreakStart,
		BreakEnd:   req.BreakStart.Add(BreakLength),
	}
	if err := s.inTx(ctx, func(ctx context.Context) error {
		return s.schedules.Create(ctx, sched)
	}); err != nil {
		return nil, err
	}
	s.invalidateFreeTimes(ctx, doctorID)
	return sched, nil
}

// UpdateSchedule patches a schedule owned by the doctor behind userID,
// re-validating the merged result and recomputing the break end.
func (s *Service) UpdateSchedule(ctx context.Context, userID, id uuid.UUID, req ScheduleRequest) (*Schedule, error) {
	doctorID, err := s.doctors.DoctorByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sched, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sched.DoctorID != doctorID {
		return nil, ErrNotFound
	}

	if req.Day != "" {
		day, err := parseDay(req.Day)
		if err != nil {
			return nil, err
		}
		sched.Day = day
	}
	if req.StartTime != nil {
		sched.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		sched.EndTime = *req.EndTime
	}
	if req.BreakStart != nil {
		sched.BreakStart = *req.BreakStart
	}
	if err := ValidateSchedule(s.today(), sched.Day, sched.StartTime, sched.EndTime, sched.BreakStart); err != nil {
		return nil, err
	}
	sched.BreakEnd = sched.BreakStart.Add(BreakLength)

	if err := s.inTx(ctx, func(ctx context.Context) error {
		return s.schedules.Update(ctx, sched)
	}); err != nil {
		return nil, err
	}
	s.invalidateFreeTimes(ctx, doctorID)
	return sched, nil
}

// DeleteSchedule soft-deletes a schedule owned by the doctor behind
// userID. Refused while any appointment exists for that day.
func (s *Service) DeleteSchedule(ctx context.Context, userID, id uuid.UUID) error {
	doctorID, err := s.doctors.DoctorByUserID(ctx, userID)
	if err != nil {
		return err
	}
	sched, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sched.DoctorID != doctorID {
		return ErrNotFound
	}
	booked, err := s.appointments.ExistsForDoctorOnDay(ctx, doctorID, sched.Day)
	if err != nil {
		return err
	}
	if booked {
		return ErrScheduleHasAppointments
	}
	if err := s.inTx(ctx, func(ctx context.Context) error {
		return s.schedules.SoftDelete(ctx, id)
	}); err != nil {
		return err
	}
	s.invalidateFreeTimes(ctx, doctorID)
	return nil
}

// GetSchedule returns a schedule owned by the doctor behind userID.
func (s *Service) GetSchedule(ctx context.Context, userID, id uuid.UUID) (*Schedule, error) {
	doctorID, err := s.doctors.DoctorByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sched, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sched.DoctorID != doctorID {
		return nil, ErrNotFound
	}
	return sched, nil
}

// ListSchedules returns the doctor's own schedules.
func (s *Service) ListSchedules(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Schedule, int, error) {
	doctorID, err := s.doctors.DoctorByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.schedules.ListByDoctor(ctx, doctorID, limit, offset)
}

// -- Appointments --

// checkSlot runs the collision check and the fit check for a candidate
// visit, in that order. excludeID skips the appointment being moved.
func (s *Service) checkSlot(ctx context.Context, doctorID, patientID uuid.UUID, date time.Time, start Clock, excludeID uuid.UUID) error {
	sched, err := s.schedules.GetByDoctorAndDay(ctx, doctorID, date)
	if err != nil {
		return err
	}
	conflict, err := s.appointments.ExistsConflict(ctx, doctorID, patientID, date,
		start.Sub(CollisionWindow), start.Add(CollisionWindow), excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return ErrSlotTaken
	}
	if !FitsSchedule(start, start.Add(VisitLength), sched) {
		return ErrOutsideWorkingHours
	}
	return nil
}

// CreateAppointment books a 30-minute visit for the calling patient.
func (s *Service) CreateAppointment(ctx context.Context, patientID uuid.UUID, req AppointmentRequest) (*Appointment, error) {
	if req.DoctorID == uuid.Nil || req.Date == "" || req.StartTime == nil {
		return nil, fmt.Errorf("doctor_id, date and start_time are required")
	}
	date, err := parseDay(req.Date)
	if err != nil {
		return nil, err
	}
	ok, err := s.doctors.DoctorExists(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	if err := s.checkSlot(ctx, req.DoctorID, patientID, date, *req.StartTime, uuid.Nil); err != nil {
		return nil, err
	}

	appt := &Appointment{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      date,
		StartTime: *req.StartTime,
		Status:    StatusPending,
	}
	if err := s.inTx(ctx, func(ctx context.Context) error {
		return s.appointments.Create(ctx, appt)
	}); err != nil {
		return nil, err
	}
	s.invalidateFreeTimes(ctx, req.DoctorID)
	return appt, nil
}

// UpdateAppointment reschedules a pending appointment owned by the
// calling patient, re-running the collision and fit checks against the
// target day's schedule.
func (s *Service) UpdateAppointment(ctx context.Context, patientID, id uuid.UUID, req AppointmentRequest) (*Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID || appt.Status != StatusPending {
		return nil, ErrNotFound
	}

	if req.Date != "" {
		date, err := parseDay(req.Date)
		if err != nil {
			return nil, err
		}
		appt.Date = date
	}
	if req.StartTime != nil {
		appt.StartTime = *req.StartTime
	}
	if err := s.checkSlot(ctx, appt.DoctorID, patientID, appt.Date, appt.StartTime, appt.ID); err != nil {
		return nil, err
	}

	if err := s.inTx(ctx, func(ctx context.Context) error {
		return s.appointments.Update(ctx, appt)
	}); err != nil {
		return nil, err
	}
	s.invalidateFreeTimes(ctx, appt.DoctorID)
	return appt, nil
}

// DeleteAppointment soft-deletes a pending appointment owned by the
// calling patient.
func (s *Service) DeleteAppointment(ctx context.Context, patientID, id uuid.UUID) error {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if appt.PatientID != patientID || appt.Status != StatusPending {
		return ErrNotFound
	}
	if err := s.inTx(ctx, func(ctx context.Context) error {
		return s.appointments.SoftDelete(ctx, id)
	}); err != nil {
		return err
	}
	s.invalidateFreeTimes(ctx, appt.DoctorID)
	return nil
}

// GetAppointment returns an appointment owned by the calling patient.
func (s *Service) GetAppointment(ctx context.Context, patientID, id uuid.UUID) (*Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, ErrNotFound
	}
	return appt, nil
}

// ListAppointments returns the calling patient's appointments with the
// given status.
func (s *Service) ListAppointments(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	if !ValidStatus(status) {
		return nil, 0, fmt.Errorf("invalid appointment status: %s", status)
	}
	return s.appointments.ListByPatient(ctx, patientID, status, limit, offset)
}

// ListDoctorAppointments returns the appointments of the doctor behind
// userID with the given status.
func (s *Service) ListDoctorAppointments(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	if !ValidStatus(status) {
		return nil, 0, fmt.Errorf("invalid appointment status: %s", status)
	}
	doctorID, err := s.doctors.DoctorByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.appointments.ListByDoctor(ctx, doctorID, status, limit, offset)
}

// CompleteAppointment transitions a pending appointment to COMPLETED.
// Called by billing when payment is recorded; runs inside the caller's
// transaction when one is active.
func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s", ErrNotPending, id)
	}
	appt.Status = StatusCompleted
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}
	s.invalidateFreeTimes(ctx, appt.DoctorID)
	return appt, nil
}

// -- Availability --

// FreeTimes computes the open booking spans for every working day the
// doctor has declared. Results are cached briefly per doctor and
// invalidated on any schedule or appointment change.
func (s *Service) FreeTimes(ctx context.Context, doctorID uuid.UUID) ([]DayAvailability, error) {
	key := freeTimesKey(doctorID)
	var cached []DayAvailability
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	ok, err := s.doctors.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	schedules, err := s.schedules.AllByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	days := make([]DayAvailability, 0, len(schedules))
	for _, sched := range schedules {
		appts, err := s.appointments.ListByDoctorDayStatus(ctx, doctorID, sched.Day, StatusPending)
		if err != nil {
			return nil, err
		}
		days = append(days, DayAvailability{
			Date:      sched.Day.Format(time.DateOnly),
			FreeTimes: ComputeFreeIntervals(sched, appts),
		})
	}
	s.cache.Set(ctx, key, days, freeTimesTTL)
	return days, nil
}
