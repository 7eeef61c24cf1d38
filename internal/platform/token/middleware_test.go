package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newAuthTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Secret:     testSecret,
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, nil, opts...)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func doAuthRequest(t *testing.T, mw echo.MiddlewareFunc, path, authHeader string) (*httptest.ResponseRecorder, Identity) {
	t.Helper()
	e := echo.New()
	var seen Identity
	handler := mw(func(c echo.Context) error {
		seen, _ = CallerFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, seen
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	svc := newAuthTestService(t)
	access, _, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rec, seen := doAuthRequest(t, RequireAuth(svc, nil), "/api/v1/users/profile", "Bearer "+access)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if seen != testIdentity() {
		t.Errorf("context identity mismatch: got %+v", seen)
	}
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	now := time.Now()
	clock := now
	svc := newAuthTestService(t, WithClock(func() time.Time { return clock }))
	access, refresh, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	clock = now.Add(16 * time.Minute)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"garbage token", "Bearer not-a-token"},
		{"expired token", "Bearer " + access},
		{"refresh token", "Bearer " + refresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doAuthRequest(t, RequireAuth(svc, nil), "/api/v1/users/profile", tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireAuthSkipsPublicPaths(t *testing.T) {
	svc := newAuthTestService(t)
	rec, _ := doAuthRequest(t, RequireAuth(svc, AuthSkipper), "/api/v1/auth/login", "")
	if rec.Code != http.StatusOK {
		t.Errorf("public path should bypass auth, got %d", rec.Code)
	}

	rec, _ = doAuthRequest(t, RequireAuth(svc, AuthSkipper), "/api/v1/users/profile", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("protected path without token: got %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required []string
		want     int
	}{
		{"matching role", RoleProfessional, []string{RoleProfessional}, http.StatusOK},
		{"super bypasses", RoleSuper, []string{RoleProfessional}, http.StatusOK},
		{"one of several", RoleClient, []string{RoleProfessional, RoleClient}, http.StatusOK},
		{"wrong role", RoleClient, []string{RoleProfessional}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAuthTestService(t)
			id := testIdentity()
			id.Role = tt.role
			access, _, err := svc.Issue(id)
			if err != nil {
				t.Fatalf("Issue failed: %v", err)
			}

			e := echo.New()
			chained := RequireAuth(svc, nil)(RequireRole(tt.required...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
			req.Header.Set("Authorization", "Bearer "+access)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if err := chained(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	e := echo.New()
	handler := RequireRole(RoleProfessional)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
