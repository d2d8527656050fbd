package session

import (
	"sync"
	"time"
)

// Session is the request-scoped handle to one session's state.
// All methods are safe for concurrent use; a single handle is shared by every
// part of a request that accesses the session.
type Session struct {
	mu     sync.Mutex
	state  *State
	status Status
}

// Attach returns a handle seeded with state and status Unchanged.
// A nil state is replaced by an empty one with DefaultTimeout.
func Attach(state *State) *Session {
	if state == nil {
		state = NewState(DefaultTimeout)
	}
	return &Session{state: state}
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Timeout returns the inactivity timeout of the session.
func (s *Session) Timeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.timeout
}

// Keys returns the session keys in sorted order.
func (s *Session) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Keys()
}

// Get decodes the value stored under key into dst and reports whether the key exists.
func (s *Session) Get(key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Get(key, dst)
}

// Set stores value under key. It is a no-op on a purged session.
// A value that cannot be encoded leaves the session untouched.
func (s *Session) Set(key string, value any) error {
	raw, err := encodeValue(key, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advance(eventMutate) {
		s.state.values[key] = raw
	}
	return nil
}

// Remove deletes key. It is a no-op on a purged session.
func (s *Session) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advance(eventMutate) {
		s.state.remove(key)
	}
}

// Clear deletes all keys but keeps the session. It is a no-op on a purged session.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advance(eventMutate) {
		s.state.clear()
	}
}

// UpdateTimeout replaces the inactivity timeout of this session.
// Non-positive durations are ignored, as is any call on a purged session.
func (s *Session) UpdateTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advance(eventMutate) {
		s.state.timeout = timeout
	}
}

// Renew asks for the session id to be rotated at the end of the request.
// The state is kept under the new id.
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance(eventRenew)
}

// Purge drops all values and marks the session for deletion on both
// client and server. Nothing can undo it within the request.
func (s *Session) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance(eventPurge)
	s.state.clear()
}

// TakeChanges detaches the accumulated state and returns it with the status.
// The handle keeps an empty state with the same timeout.
// It is meant to be called once, when the response is finalized.
func (s *Session) TakeChanges() (Status, *State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	s.state = newState(state.timeout, state.lastUsed)
	return s.status, state
}

// advance applies e and reports whether values may still be modified.
// Callers must hold s.mu.
func (s *Session) advance(e event) bool {
	s.status = s.status.next(e)
	return s.status != Purged
}
