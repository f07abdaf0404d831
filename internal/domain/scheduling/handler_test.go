package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
)

// identityFromHeaders is a test stand-in for the JWT middleware: it
// reads the caller's id and role from request headers.
func identityFromHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, auth.UserIDKey, c.Request().Header.Get("X-Test-User"))
		ctx = context.WithValue(ctx, auth.UserRoleKey, c.Request().Header.Get("X-Test-Role"))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func newTestServer(f *fixture) *echo.Echo {
	e := echo.New()
	api := e.Group("/api/v1", identityFromHeaders)
	NewHandler(f.svc).RegisterRoutes(api)
	return e
}

func doRequest(e *echo.Echo, method, path, body string, userID uuid.UUID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Test-User", userID.String())
	req.Header.Set("X-Test-Role", role)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateSchedule(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"day":"` + f.today.AddDate(0, 0, 1).Format(time.DateOnly) + `","start_time":"09:00","end_time":"17:00","break_start":"13:00"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/schedules", body, f.userID, auth.RoleDoctor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var sched Schedule
	if err := json.Unmarshal(rec.Body.Bytes(), &sched); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if sched.BreakEnd != NewClock(14, 0) {
		t.Errorf("expected break end 14:00, got %s", sched.BreakEnd)
	}
}

func TestHandler_CreateSchedule_PatientForbidden(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	rec := doRequest(e, http.MethodPost, "/api/v1/schedules", `{}`, uuid.New(), auth.RolePatient)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandler_CreateSchedule_BeyondHorizon(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"day":"` + f.today.AddDate(0, 0, 10).Format(time.DateOnly) + `","start_time":"09:00","end_time":"17:00","break_start":"13:00"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/schedules", body, f.userID, auth.RoleDoctor)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_CreateSchedule_DuplicateDayConflict(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)
	f.mustCreateSchedule(t, 1)

	body := `{"day":"` + f.today.AddDate(0, 0, 1).Format(time.DateOnly) + `","start_time":"09:00","end_time":"17:00","break_start":"13:00"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/schedules", body, f.userID, auth.RoleDoctor)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_CreateAppointment_SlotTaken(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)
	sched := f.mustCreateSchedule(t, 1)
	if _, err := f.svc.CreateAppointment(context.Background(), uuid.New(), f.apptReq(sched, NewClock(10, 15))); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	body := `{"doctor_id":"` + f.doctorID.String() + `","date":"` + sched.Day.Format(time.DateOnly) + `","start_time":"10:00"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/appointments", body, uuid.New(), auth.RolePatient)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_FreeTimes(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)
	sched := f.mustCreateSchedule(t, 1)
	if _, err := f.svc.CreateAppointment(context.Background(), uuid.New(), f.apptReq(sched, NewClock(10, 0))); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/schedules/free/"+f.doctorID.String(), "", uuid.New(), auth.RolePatient)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var days []DayAvailability
	if err := json.Unmarshal(rec.Body.Bytes(), &days); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(days) != 1 || len(days[0].FreeTimes) != 3 {
		t.Fatalf("unexpected availability payload: %s", rec.Body.String())
	}
	if days[0].FreeTimes[0].From != NewClock(9, 0) || days[0].FreeTimes[0].Till != NewClock(10, 0) {
		t.Errorf("unexpected first interval: %+v", days[0].FreeTimes[0])
	}
}

func TestHandler_FreeTimes_DevBypassesRoleGate(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)
	f.mustCreateSchedule(t, 1)

	rec := doRequest(e, http.MethodGet, "/api/v1/schedules/free/"+f.doctorID.String(), "", uuid.New(), auth.RoleDev)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for DEV role, got %d", rec.Code)
	}
}

func TestHandler_DeleteAppointment(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)
	sched := f.mustCreateSchedule(t, 1)
	patient := uuid.New()
	appt, err := f.svc.CreateAppointment(context.Background(), patient, f.apptReq(sched, NewClock(10, 0)))
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	rec := doRequest(e, http.MethodDelete, "/api/v1/appointments/"+appt.ID.String(), "", patient, auth.RolePatient)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(e, http.MethodDelete, "/api/v1/appointments/"+appt.ID.String(), "", patient, auth.RolePatient)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for already deleted appointment, got %d", rec.Code)
	}
}
