package repository

import (
	"context"
	"errors"

	"lifetrack-api/internal/domain/entity"
)

// Store errors surfaced to the application layer.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository is the persistence port for the user aggregate. Emails are
// stored normalized, so GetByEmail is effectively case-insensitive as long as
// callers normalize first.
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicateEmail when the unique
	// email index rejects the write.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByProviderID(ctx context.Context, providerID string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// LinkProvider atomically attaches a federated identity to an existing
	// user and switches its provider.
	LinkProvider(ctx context.Context, id, provider, providerID string) (*entity.User, error)
	// BumpTokenVersion atomically increments the user's token version and
	// returns the new value. Outstanding refresh tokens become stale.
	BumpTokenVersion(ctx context.Context, id string) (int, error)
}
