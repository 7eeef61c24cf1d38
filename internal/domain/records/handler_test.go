package records

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinova/clinova/internal/platform/token"
)

type mockAssistantChecker struct {
	assistants map[uuid.UUID]bool
}

func (m *mockAssistantChecker) IsAssistant(_ context.Context, userID uuid.UUID) (bool, error) {
	return m.assistants[userID], nil
}

func newRouterEnv(t *testing.T) (*testFixture, *mockAssistantChecker, *echo.Echo) {
	t.Helper()
	f := newTestFixture()
	checker := &mockAssistantChecker{assistants: map[uuid.UUID]bool{}}
	e := echo.New()
	NewHandler(f.svc, checker).RegisterRoutes(e.Group("/api/v1"))
	return f, checker, e
}

// doAs routes a request through the registered middleware chain with the
// given caller identity already resolved on the request context.
func doAs(e *echo.Echo, method, target, body string, identity *token.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if identity != nil {
		req = req.WithContext(context.WithValue(req.Context(), token.IdentityKey, *identity))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecordReadsAdmitProfessionalsAndAssistants(t *testing.T) {
	f, checker, e := newRouterEnv(t)
	stored := f.seedRecord(t)
	target := "/api/v1/records/" + stored.ID.String()

	professional := &token.Identity{UserID: uuid.New().String(), Role: token.RoleProfessional}
	if rec := doAs(e, http.MethodGet, target, "", professional); rec.Code != http.StatusOK {
		t.Errorf("professional read status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	super := &token.Identity{UserID: uuid.New().String(), Role: token.RoleSuper}
	if rec := doAs(e, http.MethodGet, target, "", super); rec.Code != http.StatusOK {
		t.Errorf("super read status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// A client with an assistant profile reads clinical data.
	assistantID := uuid.New()
	checker.assistants[assistantID] = true
	assistant := &token.Identity{UserID: assistantID.String(), Role: token.RoleClient}
	if rec := doAs(e, http.MethodGet, target, "", assistant); rec.Code != http.StatusOK {
		t.Errorf("assistant read status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// A plain client does not, even for their own record.
	client := &token.Identity{UserID: uuid.New().String(), Role: token.RoleClient}
	if rec := doAs(e, http.MethodGet, target, "", client); rec.Code != http.StatusForbidden {
		t.Errorf("client read status = %d, want 403: %s", rec.Code, rec.Body.String())
	}

	if rec := doAs(e, http.MethodGet, target, "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous read status = %d, want 401: %s", rec.Code, rec.Body.String())
	}
}

func TestRecordWritesRequireProfessionalRole(t *testing.T) {
	_, checker, e := newRouterEnv(t)

	// Assistant profiles grant read access only.
	assistantID := uuid.New()
	checker.assistants[assistantID] = true
	assistant := &token.Identity{UserID: assistantID.String(), Role: token.RoleClient}

	body := `{"patient_id":"` + uuid.New().String() + `"}`
	if rec := doAs(e, http.MethodPost, "/api/v1/records", body, assistant); rec.Code != http.StatusForbidden {
		t.Errorf("assistant write status = %d, want 403: %s", rec.Code, rec.Body.String())
	}

	professional := &token.Identity{UserID: uuid.New().String(), Role: token.RoleProfessional}
	if rec := doAs(e, http.MethodPost, "/api/v1/records", body, professional); rec.Code != http.StatusCreated {
		t.Errorf("professional write status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}
