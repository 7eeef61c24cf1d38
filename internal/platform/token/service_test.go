package token

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-for-unit-tests-only")

// fakeExternalVerifier accepts a single known token string and records how
// often it was consulted.
type fakeExternalVerifier struct {
	accept string
	claims *ExternalClaims
	calls  int
}

func (f *fakeExternalVerifier) Verify(_ context.Context, rawToken string) (*ExternalClaims, error) {
	f.calls++
	if rawToken == f.accept {
		return f.claims, nil
	}
	return nil, errors.New("provider rejected token")
}

func newTestService(t *testing.T, external ExternalVerifier, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Secret:     testSecret,
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, external, opts...)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func testIdentity() Identity {
	return Identity{
		UserID:        "usr-123",
		ExternalUID:   "fb-uid-abc",
		Email:         "ana@example.com",
		Name:          "Ana",
		Role:          RoleProfessional,
		EmailVerified: true,
	}
}

func TestNewServiceRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty secret", Config{Algorithm: "HS256", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"unknown algorithm", Config{Secret: testSecret, Algorithm: "none", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"non-hmac algorithm", Config{Secret: testSecret, Algorithm: "RS256", AccessTTL: time.Minute, RefreshTTL: time.Hour}},
		{"zero access ttl", Config{Secret: testSecret, Algorithm: "HS256", RefreshTTL: time.Hour}},
		{"zero refresh ttl", Config{Secret: testSecret, Algorithm: "HS256", AccessTTL: time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewService(tt.cfg, nil); err == nil {
				t.Error("expected construction error, got nil")
			}
		})
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)
	want := testIdentity()

	access, refresh, err := svc.Issue(want)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if access == refresh {
		t.Fatal("access and refresh tokens must differ")
	}

	claims, err := svc.VerifyAccess(context.Background(), access)
	if err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if got := claims.Identity(); got != want {
		t.Errorf("identity round-trip mismatch: got %+v, want %+v", got, want)
	}
	if claims.TokenType != "" {
		t.Errorf("access token must carry no kind claim, got %q", claims.TokenType)
	}

	rc, err := svc.VerifyRefresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("VerifyRefresh failed: %v", err)
	}
	if !rc.IsRefresh() {
		t.Error("refresh claims should report IsRefresh")
	}
	if got := rc.Identity(); got != want {
		t.Errorf("refresh identity mismatch: got %+v, want %+v", got, want)
	}
}

func TestKindSeparation(t *testing.T) {
	svc := newTestService(t, nil)
	access, refresh, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := svc.VerifyAccess(context.Background(), refresh); !errors.Is(err, ErrTokenKindMismatch) {
		t.Errorf("refresh token as access: got %v, want ErrTokenKindMismatch", err)
	}
	if _, err := svc.VerifyRefresh(context.Background(), access); !errors.Is(err, ErrTokenKindMismatch) {
		t.Errorf("access token as refresh: got %v, want ErrTokenKindMismatch", err)
	}
	if _, err := svc.Refresh(context.Background(), access); !errors.Is(err, ErrTokenKindMismatch) {
		t.Errorf("Refresh with access token: got %v, want ErrTokenKindMismatch", err)
	}
}

func TestExpiredTokensReportExpiry(t *testing.T) {
	now := time.Now()
	clock := now
	svc := newTestService(t, nil, WithClock(func() time.Time { return clock }))

	access, refresh, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	clock = now.Add(16 * time.Minute)
	if _, err := svc.VerifyAccess(context.Background(), access); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired access token: got %v, want ErrTokenExpired", err)
	}
	if _, err := svc.VerifyRefresh(context.Background(), refresh); err != nil {
		t.Errorf("refresh token should outlive the access token: %v", err)
	}

	clock = now.Add(8 * 24 * time.Hour)
	if _, err := svc.VerifyRefresh(context.Background(), refresh); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired refresh token: got %v, want ErrTokenExpired", err)
	}
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	svc := newTestService(t, nil)
	access, _, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the signature segment.
	i := strings.LastIndex(access, ".") + 1
	b := []byte(access)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}

	if _, err := svc.VerifyAccess(context.Background(), string(b)); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("tampered token: got %v, want ErrTokenInvalid", err)
	}
	if _, err := svc.VerifyAccess(context.Background(), "not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage token: got %v, want ErrTokenInvalid", err)
	}
}

func TestTokenSignedWithOtherKeyIsInvalid(t *testing.T) {
	svc := newTestService(t, nil)
	other := newTestService(t, nil)
	other.cfg.Secret = []byte("a-different-secret-entirely")

	access, _, err := other.Issue(testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := svc.VerifyAccess(context.Background(), access); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("foreign-key token: got %v, want ErrTokenInvalid", err)
	}
}

func TestRefreshIssuesNewAccessWithoutRotation(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	clock := now
	svc := newTestService(t, nil, WithClock(func() time.Time { return clock }))

	_, refresh, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	clock = now.Add(10 * time.Minute)
	access1, err := svc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	claims, err := svc.VerifyAccess(context.Background(), access1)
	if err != nil {
		t.Fatalf("VerifyAccess on refreshed token failed: %v", err)
	}
	wantExp := clock.Add(15 * time.Minute)
	if !claims.ExpiresAt.Time.Equal(wantExp) {
		t.Errorf("refreshed access expiry: got %v, want %v", claims.ExpiresAt.Time, wantExp)
	}
	if got := claims.Identity(); got != testIdentity() {
		t.Errorf("refreshed identity mismatch: got %+v", got)
	}

	// The same refresh token stays usable; refreshing does not rotate it,
	// and every refresh pushes the access expiry forward.
	clock = now.Add(20 * time.Minute)
	access2, err := svc.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("second refresh with same token failed: %v", err)
	}
	claims2, err := svc.VerifyAccess(context.Background(), access2)
	if err != nil {
		t.Fatalf("VerifyAccess on second refreshed token failed: %v", err)
	}
	if !claims2.ExpiresAt.Time.After(claims.ExpiresAt.Time) {
		t.Errorf("second refresh expiry %v is not after first %v",
			claims2.ExpiresAt.Time, claims.ExpiresAt.Time)
	}
}

func TestVerifyAccessFallsBackToExternal(t *testing.T) {
	external := &fakeExternalVerifier{
		accept: "provider-token",
		claims: &ExternalClaims{
			UID:           "fb-uid-abc",
			Email:         "ana@example.com",
			EmailVerified: true,
			Raw:           map[string]interface{}{"exp": float64(time.Now().Add(time.Hour).Unix())},
		},
	}
	svc := newTestService(t, external)

	// A locally signed token never reaches the external verifier.
	access, _, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := svc.VerifyAccess(context.Background(), access); err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if external.calls != 0 {
		t.Errorf("external verifier consulted for a local token: %d calls", external.calls)
	}

	// A provider token fails local verification and is claimed externally.
	claims, err := svc.VerifyAccess(context.Background(), "provider-token")
	if err != nil {
		t.Fatalf("external fallback failed: %v", err)
	}
	if external.calls != 1 {
		t.Errorf("expected exactly one external call, got %d", external.calls)
	}
	if claims.ExternalUID != "fb-uid-abc" {
		t.Errorf("transient claims uid: got %q", claims.ExternalUID)
	}
	if claims.UserID != "" {
		t.Errorf("transient claims must have no internal user id, got %q", claims.UserID)
	}
	if claims.Name != "ana" {
		t.Errorf("transient display name: got %q, want email local part", claims.Name)
	}

	// Rejected everywhere ends as ErrTokenInvalid.
	if _, err := svc.VerifyAccess(context.Background(), "junk"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("token rejected by every strategy: got %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyExternal(t *testing.T) {
	external := &fakeExternalVerifier{
		accept: "provider-token",
		claims: &ExternalClaims{UID: "fb-uid-abc", Email: "ana@example.com"},
	}
	svc := newTestService(t, external)

	ec, err := svc.VerifyExternal(context.Background(), "provider-token")
	if err != nil {
		t.Fatalf("VerifyExternal failed: %v", err)
	}
	if ec.UID != "fb-uid-abc" {
		t.Errorf("uid: got %q", ec.UID)
	}

	if _, err := svc.VerifyExternal(context.Background(), "junk"); !errors.Is(err, ErrExternalTokenInvalid) {
		t.Errorf("rejected provider token: got %v, want ErrExternalTokenInvalid", err)
	}

	bare := newTestService(t, nil)
	if _, err := bare.VerifyExternal(context.Background(), "anything"); !errors.Is(err, ErrExternalTokenInvalid) {
		t.Errorf("no verifier configured: got %v, want ErrExternalTokenInvalid", err)
	}
}

func TestRefreshIgnoresExternalVerifier(t *testing.T) {
	external := &fakeExternalVerifier{accept: "provider-token", claims: &ExternalClaims{UID: "x"}}
	svc := newTestService(t, external)

	if _, err := svc.VerifyRefresh(context.Background(), "provider-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("provider token as refresh: got %v, want ErrTokenInvalid", err)
	}
	if external.calls != 0 {
		t.Errorf("refresh verification must never consult the external verifier, got %d calls", external.calls)
	}
}

func TestSignedTokenWireFormat(t *testing.T) {
	svc := newTestService(t, nil)
	access, _, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(access, claims, func(*jwt.Token) (interface{}, error) {
		return testSecret, nil
	}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims["user_uid"] != "usr-123" {
		t.Errorf("user_uid claim: got %v", claims["user_uid"])
	}
	if claims["uid"] != "fb-uid-abc" {
		t.Errorf("uid claim: got %v", claims["uid"])
	}
	if _, ok := claims["type"]; ok {
		t.Error("access token must not carry a type claim")
	}
}
