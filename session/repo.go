package session

import (
	"context"

	"github.com/kasyus/kasyus-go/users"
)

// Store defines the persistent session store: an origin-scoped key-value
// store holding exactly two entries, the raw bearer token and the cached
// user profile. The Manager is the sole writer of both entries; consumers
// of a session must read state through the Manager, never from the store.
type Store interface {
	// Read returns the persisted token and cached profile. Missing entries
	// come back as zero values, not errors.
	Read(ctx context.Context) (token string, user *users.User, err error)

	// WriteToken persists the raw bearer token.
	WriteToken(ctx context.Context, token string) error

	// WriteUser persists the verified user profile.
	WriteUser(ctx context.Context, user *users.User) error

	// Clear removes both entries. Token and profile are always cleared
	// together so a profile can never outlive its token.
	Clear(ctx context.Context) error
}
