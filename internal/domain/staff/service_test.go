package staff

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/auth"
)

// -- Mocks --

type mockEmployeeRepo struct {
	employees map[uuid.UUID]*Employee
	// userMeta mirrors the users table columns the joins touch.
	userMeta map[uuid.UUID]userMeta
}

type userMeta struct {
	clinicID *uuid.UUID
	role     string
	deleted  bool
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{
		employees: make(map[uuid.UUID]*Employee),
		userMeta:  make(map[uuid.UUID]userMeta),
	}
}

func (m *mockEmployeeRepo) Create(_ context.Context, e *Employee) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = time.Now()
	m.employees[e.ID] = e
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id uuid.UUID) (*Employee, error) {
	e, ok := m.employees[id]
	if !ok || e.Deleted {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *mockEmployeeRepo) GetInClinic(_ context.Context, id, clinicID uuid.UUID) (*Employee, error) {
	e, ok := m.employees[id]
	if !ok || e.Deleted {
		return nil, ErrNotFound
	}
	meta := m.userMeta[e.UserID]
	if meta.clinicID == nil || *meta.clinicID != clinicID {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *mockEmployeeRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Employee, error) {
	for _, e := range m.employees {
		if e.UserID == userID && !e.Deleted {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockEmployeeRepo) Update(_ context.Context, e *Employee) error {
	m.employees[e.ID] = e
	return nil
}

func (m *mockEmployeeRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if e, ok := m.employees[id]; ok {
		e.Deleted = true
	}
	return nil
}

func (m *mockEmployeeRepo) ListByClinic(_ context.Context, clinicID uuid.UUID, limit, offset int) ([]*Employee, int, error) {
	var out []*Employee
	for _, e := range m.employees {
		if e.Deleted {
			continue
		}
		meta := m.userMeta[e.UserID]
		if meta.clinicID != nil && *meta.clinicID == clinicID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *mockEmployeeRepo) DoctorByUserID(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	meta := m.userMeta[userID]
	if meta.role != auth.RoleDoctor || meta.deleted {
		return uuid.Nil, ErrNotFound
	}
	for _, e := range m.employees {
		if e.UserID == userID && !e.Deleted {
			return e.ID, nil
		}
	}
	return uuid.Nil, ErrNotFound
}

func (m *mockEmployeeRepo) DoctorExists(_ context.Context, id uuid.UUID) (bool, error) {
	e, ok := m.employees[id]
	if !ok || e.Deleted {
		return false, nil
	}
	meta := m.userMeta[e.UserID]
	return meta.role == auth.RoleDoctor && !meta.deleted, nil
}

// mockUserDirectory plays the identity service.
type mockUserDirectory struct {
	repo  *mockEmployeeRepo
	taken map[string]bool
}

func (m *mockUserDirectory) add(clinicID *uuid.UUID, role string) uuid.UUID {
	userID := uuid.New()
	m.repo.userMeta[userID] = userMeta{clinicID: clinicID, role: role}
	return userID
}

func (m *mockUserDirectory) ClinicOf(_ context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	meta, ok := m.repo.userMeta[userID]
	if !ok || meta.deleted {
		return nil, errors.New("unknown caller")
	}
	return meta.clinicID, nil
}

func (m *mockUserDirectory) Provision(_ context.Context, p UserPayload, role string, clinicID *uuid.UUID) (uuid.UUID, error) {
	if m.taken[p.Username] {
		return uuid.Nil, ErrUserTaken
	}
	m.taken[p.Username] = true
	userID := uuid.New()
	m.repo.userMeta[userID] = userMeta{clinicID: clinicID, role: role}
	return userID, nil
}

func (m *mockUserDirectory) Remove(_ context.Context, userID uuid.UUID) error {
	meta := m.repo.userMeta[userID]
	meta.deleted = true
	m.repo.userMeta[userID] = meta
	return nil
}

type mockServiceDirectory struct {
	services map[uuid.UUID]uuid.UUID // service id -> clinic id
}

func (m *mockServiceDirectory) add(clinicID uuid.UUID) uuid.UUID {
	serviceID := uuid.New()
	m.services[serviceID] = clinicID
	return serviceID
}

func (m *mockServiceDirectory) ServiceExists(_ context.Context, serviceID, clinicID uuid.UUID) (bool, error) {
	return m.services[serviceID] == clinicID, nil
}

// -- Fixture --

type fixture struct {
	repo      *mockEmployeeRepo
	users     *mockUserDirectory
	services  *mockServiceDirectory
	svc       *Service
	clinicID  uuid.UUID
	director  uuid.UUID
	serviceID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMockEmployeeRepo()
	users := &mockUserDirectory{repo: repo, taken: make(map[string]bool)}
	services := &mockServiceDirectory{services: make(map[uuid.UUID]uuid.UUID)}
	clinicID := uuid.New()

	return &fixture{
		repo:      repo,
		users:     users,
		services:  services,
		svc:       NewService(repo, users, services, nil),
		clinicID:  clinicID,
		director:  users.add(&clinicID, auth.RoleDirector),
		serviceID: services.add(clinicID),
	}
}

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func uuidPtr(v uuid.UUID) *uuid.UUID { return &v }

func userPayload(username string) UserPayload {
	return UserPayload{
		Username:    username,
		Password:    "s3cret",
		FullName:    "Dilnoza Karimova",
		Gender:      boolPtr(false),
		Address:     "Tashkent",
		PhoneNumber: "+998901234567",
		BirthDate:   "1988-03-21",
	}
}

func doctorReq(f *fixture, username string) EmployeeRequest {
	return EmployeeRequest{
		User:            userPayload(username),
		Role:            auth.RoleDoctor,
		Experience:      7,
		Education:       "Tashkent Medical Academy",
		ConsultantPrice: floatPtr(250000),
		ServiceID:       uuidPtr(f.serviceID),
	}
}

func cashierReq(username string) EmployeeRequest {
	return EmployeeRequest{
		User:       userPayload(username),
		Role:       auth.RoleCashier,
		Experience: 2,
		Education:  "College of Economics",
	}
}

// -- Tests --

func TestCreate_DoctorRequiresPriceAndService(t *testing.T) {
	f := newFixture(t)

	req := doctorReq(f, "doc")
	req.ConsultantPrice = nil
	if _, err := f.svc.Create(context.Background(), f.director, req); !errors.Is(err, ErrEmployeeInvalid) {
		t.Fatalf("doctor without price: expected ErrEmployeeInvalid, got %v", err)
	}

	req = doctorReq(f, "doc")
	req.ServiceID = nil
	if _, err := f.svc.Create(context.Background(), f.director, req); !errors.Is(err, ErrEmployeeInvalid) {
		t.Fatalf("doctor without service: expected ErrEmployeeInvalid, got %v", err)
	}

	if _, err := f.svc.Create(context.Background(), f.director, doctorReq(f, "doc")); err != nil {
		t.Fatalf("complete doctor record should succeed: %v", err)
	}
}

func TestCreate_NonDoctorMustNotCarryBillingFields(t *testing.T) {
	f := newFixture(t)

	req := cashierReq("cashier")
	req.ConsultantPrice = floatPtr(100000)
	if _, err := f.svc.Create(context.Background(), f.director, req); !errors.Is(err, ErrEmployeeInvalid) {
		t.Fatalf("cashier with price: expected ErrEmployeeInvalid, got %v", err)
	}

	req = cashierReq("cashier")
	req.ServiceID = uuidPtr(f.serviceID)
	if _, err := f.svc.Create(context.Background(), f.director, req); !errors.Is(err, ErrEmployeeInvalid) {
		t.Fatalf("cashier with service: expected ErrEmployeeInvalid, got %v", err)
	}

	if _, err := f.svc.Create(context.Background(), f.director, cashierReq("cashier")); err != nil {
		t.Fatalf("plain cashier record should succeed: %v", err)
	}
}

func TestCreate_RejectsNonEmployeeRoles(t *testing.T) {
	f := newFixture(t)

	req := cashierReq("pat")
	req.Role = auth.RolePatient
	if _, err := f.svc.Create(context.Background(), f.director, req); !errors.Is(err, ErrEmployeeInvalid) {
		t.Fatalf("expected ErrEmployeeInvalid for PATIENT, got %v", err)
	}
}

func TestCreate_ProvisionsUserInCallerClinic(t *testing.T) {
	f := newFixture(t)

	emp, err := f.svc.Create(context.Background(), f.director, doctorReq(f, "doc"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	meta := f.repo.userMeta[emp.UserID]
	if meta.clinicID == nil || *meta.clinicID != f.clinicID {
		t.Error("new user not attached to the director's clinic")
	}
	if meta.role != auth.RoleDoctor {
		t.Errorf("expected role DOCTOR, got %s", meta.role)
	}
}

func TestCreate_ServiceMustBeInClinic(t *testing.T) {
	f := newFixture(t)

	req := doctorReq(f, "doc")
	req.ServiceID = uuidPtr(f.services.add(uuid.New()))
	if _, err := f.svc.Create(context.Background(), f.director, req); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestCreate_PropagatesUserConflict(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), f.director, cashierReq("same")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Create(context.Background(), f.director, cashierReq("same")); !errors.Is(err, ErrUserTaken) {
		t.Fatalf("expected ErrUserTaken, got %v", err)
	}
}

func TestDelete_RetiresEmployeeAndUser(t *testing.T) {
	f := newFixture(t)
	emp, err := f.svc.Create(context.Background(), f.director, doctorReq(f, "doc"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.director, emp.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !f.repo.employees[emp.ID].Deleted {
		t.Error("employee row should be soft-deleted")
	}
	if !f.repo.userMeta[emp.UserID].deleted {
		t.Error("user account should be retired with the employee")
	}
}

func TestGet_ScopedToCallerClinic(t *testing.T) {
	f := newFixture(t)
	emp, err := f.svc.Create(context.Background(), f.director, doctorReq(f, "doc"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	otherClinic := uuid.New()
	outsider := f.users.add(&otherClinic, auth.RoleDirector)
	if _, err := f.svc.Get(context.Background(), outsider, emp.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across clinics, got %v", err)
	}
}

func TestUpdate_PatchesEmploymentRecord(t *testing.T) {
	f := newFixture(t)
	emp, err := f.svc.Create(context.Background(), f.director, doctorReq(f, "doc"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	exp := 12.0
	updated, err := f.svc.Update(context.Background(), f.director, emp.ID, EmployeeUpdateRequest{Experience: &exp})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Experience != 12 {
		t.Errorf("expected experience 12, got %v", updated.Experience)
	}
	if updated.Education != "Tashkent Medical Academy" {
		t.Errorf("untouched field changed: %s", updated.Education)
	}
}

func TestDoctorByUserID_OnlyDoctors(t *testing.T) {
	f := newFixture(t)
	doc, err := f.svc.Create(context.Background(), f.director, doctorReq(f, "doc"))
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	cashier, err := f.svc.Create(context.Background(), f.director, cashierReq("cashier"))
	if err != nil {
		t.Fatalf("create cashier: %v", err)
	}

	id, err := f.svc.DoctorByUserID(context.Background(), doc.UserID)
	if err != nil || id != doc.ID {
		t.Fatalf("expected doctor employee id, got %v (%v)", id, err)
	}
	if _, err := f.svc.DoctorByUserID(context.Background(), cashier.UserID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cashier is not a doctor, got %v", err)
	}

	ok, err := f.svc.DoctorExists(context.Background(), doc.ID)
	if err != nil || !ok {
		t.Fatalf("expected doctor to exist, got %v (%v)", ok, err)
	}
	ok, err = f.svc.DoctorExists(context.Background(), cashier.ID)
	if err != nil || ok {
		t.Fatalf("cashier must not pass the doctor check")
	}
}

func TestDoctorRate(t *testing.T) {
	f := newFixture(t)
	doc, err := f.svc.Create(context.Background(), f.director, doctorReq(f, "doc"))
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}

	rate, err := f.svc.DoctorRate(context.Background(), doc.ID)
	if err != nil || rate != 250000 {
		t.Fatalf("expected rate 250000, got %v (%v)", rate, err)
	}
}
