package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

// IdentityKey is the request-context key under which RequireAuth stores the
// verified caller identity.
const IdentityKey contextKey = "caller_identity"

// Role names carried in the session token. RoleSuper passes every role check.
const (
	RoleSuper        = "super"
	RoleProfessional = "professional"
	RoleClient       = "client"
)

// RequireAuth returns middleware that resolves the Authorization bearer
// token through the verification chain and stores the caller identity on the
// request context. Paths the skipper accepts pass through untouched.
func RequireAuth(svc *Service, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := svc.VerifyAccess(c.Request().Context(), parts[1])
			if err != nil {
				switch {
				case errors.Is(err, ErrTokenExpired):
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				case errors.Is(err, ErrTokenKindMismatch):
					return echo.NewHTTPError(http.StatusUnauthorized, "refresh token not accepted here")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
			}

			ctx := context.WithValue(c.Request().Context(), IdentityKey, claims.Identity())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireRole returns middleware that checks if the caller has at least one
// of the specified roles. RoleSuper always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CallerFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if id.Role == RoleSuper {
				return next(c)
			}
			for _, required := range roles {
				if id.Role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// CallerFromContext returns the identity RequireAuth stored, if any.
func CallerFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}

// CallerUserID resolves the authenticated caller's system-user id. Sessions
// minted from a raw provider token carry no system-user id until the subject
// signs up.
func CallerUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := CallerFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	if id.UserID == "" {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "no system user for this session")
	}
	userID, err := uuid.Parse(id.UserID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid session identity")
	}
	return userID, nil
}
