package domain

import "time"

// AuditAction enumerates the recorded account-lifecycle outcomes.
type AuditAction string

const (
	AuditSignup       AuditAction = "signup"
	AuditVerified     AuditAction = "email_verified"
	AuditLogin        AuditAction = "login"
	AuditLoginDenied  AuditAction = "login_denied"
	AuditLoginBlocked AuditAction = "login_unverified"
)

// AuthEvent is one entry in the account audit trail. Events are written
// asynchronously and are never load-bearing for request handling.
type AuthEvent struct {
	UserID     string
	Action     AuditAction
	Identifier string
	Timestamp  time.Time
}
