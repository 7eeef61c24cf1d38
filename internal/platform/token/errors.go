package token

import "errors"

// Error taxonomy for the session token service. Every failure surfaces as one
// of these four kinds so the HTTP layer can hand clients a machine-readable
// reason: an expired access token should trigger a refresh attempt, an
// invalid one a full re-authentication.
var (
	// ErrExternalTokenInvalid means the external identity provider rejected
	// or could not validate the presented token. Not retried; the caller must
	// obtain a new provider token and restart the sign-in flow.
	ErrExternalTokenInvalid = errors.New("external token invalid")

	// ErrTokenInvalid means signature verification failed on a locally
	// presented token (tampered, wrong key, garbage input).
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired means the signature checked out but the expiration
	// timestamp has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenKindMismatch means a refresh token was presented where an
	// access token is required, or the other way around.
	ErrTokenKindMismatch = errors.New("token kind mismatch")
)
