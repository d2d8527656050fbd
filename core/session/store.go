package session

import "context"

// Store holds serialized session states keyed by session id.
// Implementations must handle concurrent access safely.
type Store interface {
	// GetState returns a snapshot of the state stored under id.
	// Unknown, expired and undecodable entries are all reported as absent.
	GetState(ctx context.Context, id string) (*State, bool)
	// SetState upserts state under id and stamps its last use time.
	SetState(ctx context.Context, id string, state *State) error
	// RemoveState deletes id. Removing an unknown id is not an error.
	RemoveState(ctx context.Context, id string) error
	// NewState returns an empty state carrying the store's default timeout.
	NewState() *State
}
