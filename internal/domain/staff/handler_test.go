package staff

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

func TestHandler_CreateDoctor(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"user":{"username":"doc","password":"s3cret","full_name":"Dilnoza Karimova","gender":false,"address":"Tashkent","phone_number":"+998901234567","birth_date":"1988-03-21"},"role":"DOCTOR","experience":7,"education":"Tashkent Medical Academy","consultant_price":250000,"service_id":"` + f.serviceID.String() + `"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/employees", body, f.director, auth.RoleDirector)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_CreateDoctor_IncompleteBillingFields(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"user":{"username":"doc","password":"s3cret","full_name":"Dilnoza Karimova","gender":false,"address":"Tashkent","phone_number":"+998901234567","birth_date":"1988-03-21"},"role":"DOCTOR","experience":7,"education":"Tashkent Medical Academy"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/employees", body, f.director, auth.RoleDirector)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_Employees_DoctorForbidden(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	rec := doRequest(e, http.MethodGet, "/api/v1/employees", "", uuid.New(), auth.RoleDoctor)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
