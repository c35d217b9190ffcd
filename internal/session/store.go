package session

import (
	"context"
	"time"
)

// Store holds the single active refresh token per user. The stored value
// is the source of truth for "currently active session": a refresh token
// that no longer matches it is dead, signature or not.
//
// Implementations must provide read-after-write consistency per key;
// no cross-key ordering is required.
type Store interface {
	// Set records token as the user's current refresh token, replacing
	// any previous value.
	Set(ctx context.Context, userID, token string, ttl time.Duration) error

	// Get returns the user's current refresh token, or "" when there is
	// no active session.
	Get(ctx context.Context, userID string) (string, error)

	// Delete removes the user's session. Deleting an absent key is a no-op.
	Delete(ctx context.Context, userID string) error
}
