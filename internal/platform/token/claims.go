package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kind discriminator. Access tokens carry no "type" claim; refresh
// tokens carry type=refresh. A refresh token must never be accepted where an
// access token is expected, and vice versa.
const KindRefresh = "refresh"

// ExternalClaims is the identity extracted from a verified external-provider
// ID token. It is created per verification call, folded into SessionClaims or
// discarded, and never persisted.
type ExternalClaims struct {
	// UID is the provider's stable subject id for the account.
	UID           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	// Raw carries the full provider claim set for forward compatibility.
	Raw map[string]interface{}
}

// DisplayName returns the provider name, falling back to the local part of
// the email address the way the sign-in flow expects.
func (c *ExternalClaims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if i := strings.Index(c.Email, "@"); i > 0 {
		return c.Email[:i]
	}
	return c.Email
}

// SessionClaims is the payload signed into locally issued tokens and
// reconstructed on every verification. The JSON names are the wire format:
// "user_uid" is the internal system-user id, "uid" the external subject id;
// either may be absent.
type SessionClaims struct {
	UserID        string `json:"user_uid,omitempty"`
	ExternalUID   string `json:"uid,omitempty"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Role          string `json:"role,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	TokenType     string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IsRefresh reports whether the claims belong to a refresh-kind token.
func (c *SessionClaims) IsRefresh() bool {
	return c.TokenType == KindRefresh
}

// Identity is the caller-identity record handed to route handlers. It is the
// signable subset of SessionClaims, without expiry or kind.
type Identity struct {
	UserID        string
	ExternalUID   string
	Email         string
	Name          string
	Role          string
	EmailVerified bool
}

// Identity strips expiry and kind from the claims, leaving only the fields
// that get re-signed on refresh.
func (c *SessionClaims) Identity() Identity {
	return Identity{
		UserID:        c.UserID,
		ExternalUID:   c.ExternalUID,
		Email:         c.Email,
		Name:          c.Name,
		Role:          c.Role,
		EmailVerified: c.EmailVerified,
	}
}

// IdentityFromExternal folds verified external claims into an Identity for
// first sign-in. The internal user id and role are not known to the provider
// and stay empty until the auth service fills them in.
func IdentityFromExternal(ec *ExternalClaims) Identity {
	return Identity{
		ExternalUID:   ec.UID,
		Email:         ec.Email,
		Name:          ec.DisplayName(),
		EmailVerified: ec.EmailVerified,
	}
}

// transientClaims builds an unsigned SessionClaims from external claims for
// the verification fallback path. The expiry mirrors the external token's own
// exp when present so downstream TTL checks stay meaningful.
func transientClaims(ec *ExternalClaims) *SessionClaims {
	sc := &SessionClaims{
		ExternalUID:   ec.UID,
		Email:         ec.Email,
		Name:          ec.DisplayName(),
		EmailVerified: ec.EmailVerified,
	}
	if exp, ok := ec.Raw["exp"].(float64); ok {
		sc.ExpiresAt = jwt.NewNumericDate(time.Unix(int64(exp), 0))
	}
	return sc
}
