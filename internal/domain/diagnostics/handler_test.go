package diagnostics

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

func TestHandler_FileDiagnosis(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"transaction_id":"` + f.consultTxID.String() + `","result":"Acute bronchitis"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/diagnosis-analysis", body, f.doctorUser, auth.RoleDoctor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"type":"DIAGNOSIS"`) {
		t.Errorf("expected a DIAGNOSIS result, got %s", rec.Body.String())
	}

	rec = doRequest(e, http.MethodPost, "/api/v1/diagnosis-analysis", body, f.doctorUser, auth.RoleDoctor)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a same-day repeat, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_FileAnalysis(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"transaction_id":"` + f.serviceTxID.String() + `","result":"Hemoglobin 14.2 g/dL"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/diagnosis-analysis", body, f.labUser, auth.RoleLaboratory)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"type":"ANALYSIS"`) {
		t.Errorf("expected an ANALYSIS result, got %s", rec.Body.String())
	}
}

func TestHandler_UnknownTransaction(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"transaction_id":"` + uuid.NewString() + `","result":"Flu"}`
	rec := doRequest(e, http.MethodPost, "/api/v1/diagnosis-analysis", body, f.doctorUser, auth.RoleDoctor)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_Results_CashierForbidden(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	rec := doRequest(e, http.MethodGet, "/api/v1/diagnosis-analysis", "", uuid.New(), auth.RoleCashier)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandler_ListByPatient(t *testing.T) {
	f := newFixture(t)
	e := newTestServer(f)

	body := `{"transaction_id":"` + f.consultTxID.String() + `","result":"Acute bronchitis"}`
	if rec := doRequest(e, http.MethodPost, "/api/v1/diagnosis-analysis", body, f.doctorUser, auth.RoleDoctor); rec.Code != http.StatusCreated {
		t.Fatalf("seed result failed: %d", rec.Code)
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/diagnosis-analysis/patient/"+f.patientID.String(), "", f.labUser, auth.RoleLaboratory)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("expected 1 result in the envelope, got %s", rec.Body.String())
	}
}
