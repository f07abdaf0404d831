package organization

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

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

func TestHandler_CreateClinic_OperatorOnly(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"name":"Nur","address":"Nur street 1","phone_number":"+998711234567","email":"nur@clinic.uz"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/clinics", body, f.director, auth.RoleDirector)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("director creating a clinic: expected 403, got %d", rec.Code)
	}

	rec = doRequest(e, http.MethodPost, "/api/v1/clinics", body, uuid.New(), auth.RoleDev)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_CreateDepartment(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	rec := doRequest(e, http.MethodPost, "/api/v1/departments", `{"name":"Cardiology"}`, f.director, auth.RoleDirector)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(e, http.MethodPost, "/api/v1/departments", `{"name":"Cardiology"}`, f.director, auth.RoleDirector)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate name: expected 409, got %d", rec.Code)
	}
}

func TestHandler_Departments_PatientForbidden(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	rec := doRequest(e, http.MethodGet, "/api/v1/departments", "", uuid.New(), auth.RolePatient)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
