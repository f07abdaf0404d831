package catalog

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

func TestHandler_CreateService(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"name":"ECG","description":"Electrocardiogram","price":150000,"department_id":"` + f.deptID.String() + `"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/services", body, f.director, auth.RoleDirector)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(e, http.MethodPost, "/api/v1/services", body, f.director, auth.RoleDirector)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rec.Code)
	}
}

func TestHandler_Services_CashierForbidden(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	rec := doRequest(e, http.MethodGet, "/api/v1/services", "", uuid.New(), auth.RoleCashier)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
