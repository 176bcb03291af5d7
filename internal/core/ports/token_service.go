package ports

import "time"

// Token purposes. A token issued for one purpose is never accepted for the
// other: a verification link cannot start a session and vice versa.
const (
	PurposeVerifyEmail = "verify-email"
	PurposeSession     = "session"
)

// TokenService signs and validates time-bounded, purpose-scoped tokens.
type TokenService interface {
	Issue(userID, purpose string, ttl time.Duration) (string, error)
	// Verify returns the user id bound to the token. Fails with
	// domain.ErrTokenExpired past expiry and domain.ErrTokenInvalid for a
	// bad signature, malformed structure, or purpose mismatch.
	Verify(token, expectedPurpose string) (string, error)
}
