package ports

import (
	"context"

	"github.com/safestreet/account-service/internal/core/domain"
)

// AccountService orchestrates registration, email verification, and login.
type AccountService interface {
	// Register creates an unverified account and dispatches the
	// verification email before returning.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	// VerifyEmail redeems a verification token and marks the account
	// verified. Redeeming the same token twice is safe.
	VerifyEmail(ctx context.Context, token string) error
	// Login checks credentials and returns a session token plus the
	// public profile.
	Login(ctx context.Context, identifier, password string) (string, domain.PublicProfile, error)
	// Profile resolves the public profile for an authenticated user id.
	Profile(ctx context.Context, userID string) (domain.PublicProfile, error)
}
