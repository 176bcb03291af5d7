package ports

import (
	"context"

	"github.com/safestreet/account-service/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
//
// Create must be atomic with respect to the uniqueness check: the store's
// unique constraints, not a prior read, decide conflicts. A duplicate name
// or email yields *domain.ConflictError.
type UserRepository interface {
	FindByEmailOrName(ctx context.Context, identifier string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// MarkVerified flips isEmailVerified to true. Idempotent: verifying an
	// already-verified user is a no-op, not an error.
	MarkVerified(ctx context.Context, userID string) error
}
