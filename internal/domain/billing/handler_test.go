package billing

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

func TestHandler_PayAppointment(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	path := "/api/v1/transactions/appointment/" + f.appointmentID.String()
	rec := doRequest(e, http.MethodPost, path, `{"payment_method":"CASH"}`, f.cashier, auth.RoleCashier)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(e, http.MethodPost, path, `{"payment_method":"CASH"}`, f.cashier, auth.RoleCashier)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a repeated payment, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_PayService(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"patient_id":"` + f.patientID.String() + `","service_id":"` + f.serviceID.String() + `","payment_method":"CARD"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/transactions/service", body, f.cashier, auth.RoleCashier)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_PayService_GatewayDeclined(t *testing.T) {
	f := newFixture(t)
	f.gateway.fail = true
	e := newTestServer(f)

	body := `{"patient_id":"` + f.patientID.String() + `","service_id":"` + f.serviceID.String() + `","payment_method":"CARD"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/transactions/service", body, f.cashier, auth.RoleCashier)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_ListByPayee(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	path := "/api/v1/transactions/appointment/" + f.appointmentID.String()
	if rec := doRequest(e, http.MethodPost, path, `{"payment_method":"CASH"}`, f.cashier, auth.RoleCashier); rec.Code != http.StatusCreated {
		t.Fatalf("seed payment failed: %d", rec.Code)
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/transactions?pay_for=DOCTOR", "", f.cashier, auth.RoleCashier)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(e, http.MethodGet, "/api/v1/transactions?pay_for=EVERYTHING", "", f.cashier, auth.RoleCashier)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown filter, got %d", rec.Code)
	}
}

func TestHandler_Transactions_DoctorForbidden(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	rec := doRequest(e, http.MethodGet, "/api/v1/transactions", "", uuid.New(), auth.RoleDoctor)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
