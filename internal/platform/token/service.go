package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExternalVerifier validates a token issued by the external identity
// provider. The concrete implementation (JWKS-backed Firebase verifier, a
// vendor SDK, a test fake) is injected at construction so the issue/verify
// logic never depends on provider specifics.
type ExternalVerifier interface {
	Verify(ctx context.Context, rawToken string) (*ExternalClaims, error)
}

// Config holds the signing parameters for locally issued tokens. All fields
// are required; NewService rejects a partial configuration.
type Config struct {
	Secret     []byte
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service mints and verifies the platform's session tokens. Verification is
// a pure function of (token, clock, key): no storage is consulted and no
// state is kept between calls, so concurrent use needs no coordination.
type Service struct {
	cfg      Config
	method   jwt.SigningMethod
	external ExternalVerifier
	chain    []verifyStrategy
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Used by tests to pin expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(cfg Config, external ExternalVerifier, opts ...Option) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token: signing secret is required")
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("token: unknown signing algorithm %q", cfg.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("token: algorithm %q is not an HMAC method", cfg.Algorithm)
	}
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("token: access TTL must be positive")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token: refresh TTL must be positive")
	}

	s := &Service{
		cfg:      cfg,
		method:   method,
		external: external,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Ordered verification chain: locally signed tokens first, then a
	// still-valid external token presented directly by the client.
	s.chain = []verifyStrategy{
		localStrategy{svc: s},
		externalStrategy{svc: s},
	}
	return s, nil
}

// AccessTTL reports the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.cfg.AccessTTL }

// VerifyExternal delegates to the external identity provider's verifier.
// Any provider-side rejection surfaces as ErrExternalTokenInvalid.
func (s *Service) VerifyExternal(ctx context.Context, rawToken string) (*ExternalClaims, error) {
	if s.external == nil {
		return nil, fmt.Errorf("%w: no external verifier configured", ErrExternalTokenInvalid)
	}
	ec, err := s.external.Verify(ctx, rawToken)
	if err != nil {
		if errors.Is(err, ErrExternalTokenInvalid) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrExternalTokenInvalid, err)
	}
	return ec, nil
}

// Issue signs a fresh access/refresh token pair for the given identity. The
// two tokens are independently verifiable; the refresh token carries the
// kind discriminator that blocks its use as an access token.
func (s *Service) Issue(id Identity) (accessToken, refreshToken string, err error) {
	now := s.now()
	accessToken, err = s.sign(id, "", now, now.Add(s.cfg.AccessTTL))
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err = s.sign(id, KindRefresh, now, now.Add(s.cfg.RefreshTTL))
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

// IssueAccess signs a single access token with a fresh expiration.
func (s *Service) IssueAccess(id Identity) (string, error) {
	now := s.now()
	return s.sign(id, "", now, now.Add(s.cfg.AccessTTL))
}

// VerifyAccess resolves a bearer string into session claims. Strategies run
// in order; the first one that recognizes the token decides the outcome.
// A token nothing recognizes is ErrTokenInvalid.
func (s *Service) VerifyAccess(ctx context.Context, rawToken string) (*SessionClaims, error) {
	for _, st := range s.chain {
		claims, claimed, err := st.verify(ctx, rawToken)
		if claimed {
			return claims, err
		}
	}
	return nil, ErrTokenInvalid
}

// VerifyRefresh verifies a locally signed refresh token. There is no
// external fallback here: only this service issues refresh tokens.
func (s *Service) VerifyRefresh(_ context.Context, rawToken string) (*SessionClaims, error) {
	claims, err := s.parseLocal(rawToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefresh() {
		return nil, ErrTokenKindMismatch
	}
	return claims, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself stays valid until its own expiration; this design
// deliberately does not rotate refresh tokens.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	return s.IssueAccess(claims.Identity())
}

func (s *Service) sign(id Identity, kind string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &SessionClaims{
		UserID:        id.UserID,
		ExternalUID:   id.ExternalUID,
		Email:         id.Email,
		Name:          id.Name,
		Role:          id.Role,
		EmailVerified: id.EmailVerified,
		TokenType:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.cfg.Secret)
}

// parseLocal parses and verifies a locally signed token, mapping library
// errors onto the service taxonomy: expired signatures are ErrTokenExpired,
// everything else (wrong key, wrong method, garbage) is ErrTokenInvalid.
func (s *Service) parseLocal(rawToken string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.cfg.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// verifyStrategy is one step of the ordered verification chain. claimed
// reports whether this strategy recognizes the token; once a strategy claims
// a token the chain stops and its result is final.
type verifyStrategy interface {
	verify(ctx context.Context, rawToken string) (claims *SessionClaims, claimed bool, err error)
}

// localStrategy recognizes tokens carrying a valid local signature. An
// expired-but-ours token is claimed (so the caller sees ErrTokenExpired
// rather than a generic rejection); a token that does not verify against the
// local key is left for the next strategy.
type localStrategy struct {
	svc *Service
}

func (st localStrategy) verify(_ context.Context, rawToken string) (*SessionClaims, bool, error) {
	claims, err := st.svc.parseLocal(rawToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, true, err
		}
		return nil, false, err
	}
	if claims.IsRefresh() {
		return nil, true, ErrTokenKindMismatch
	}
	return claims, true, nil
}

// externalStrategy recognizes still-valid external-provider tokens presented
// directly instead of being exchanged first. On success it returns transient
// claims derived from the provider payload; nothing is re-signed or stored.
type externalStrategy struct {
	svc *Service
}

func (st externalStrategy) verify(ctx context.Context, rawToken string) (*SessionClaims, bool, error) {
	if st.svc.external == nil {
		return nil, false, nil
	}
	ec, err := st.svc.external.Verify(ctx, rawToken)
	if err != nil {
		return nil, false, err
	}
	return transientClaims(ec), true, nil
}
