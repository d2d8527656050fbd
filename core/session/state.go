package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

// DefaultTimeout is the inactivity timeout of states created without an explicit one.
const DefaultTimeout = 30 * time.Minute

// State is the key/value data of one session together with its inactivity timeout.
// Values are held JSON-encoded. A State is not safe for concurrent use;
// request code reaches it only through a *Session.
type State struct {
	values   map[string]json.RawMessage
	timeout  time.Duration
	lastUsed time.Time
}

// NewState returns an empty state. A non-positive timeout is replaced by DefaultTimeout.
func NewState(timeout time.Duration) *State {
	return newState(timeout, time.Now())
}

func newState(timeout time.Duration, now time.Time) *State {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &State{
		values:   make(map[string]json.RawMessage),
		timeout:  timeout,
		lastUsed: now,
	}
}

// Timeout returns the inactivity timeout.
func (s *State) Timeout() time.Duration { return s.timeout }

// LastUsed returns the time the state was last written to a store.
func (s *State) LastUsed() time.Time { return s.lastUsed }

// Len returns the number of keys.
func (s *State) Len() int { return len(s.values) }

// Keys returns the keys in sorted order.
func (s *State) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// IsExpired reports whether the state has been idle longer than its timeout at now.
func (s *State) IsExpired(now time.Time) bool {
	return now.After(s.lastUsed.Add(s.timeout))
}

// Get decodes the value stored under key into dst.
// It returns false if the key is absent.
func (s *State) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("%w: key %q: %w", ErrDeserialize, key, err)
	}
	return true, nil
}

// Set encodes value and stores it under key.
func (s *State) Set(key string, value any) error {
	raw, err := encodeValue(key, value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

func (s *State) remove(key string) { delete(s.values, key) }

func (s *State) clear() { clear(s.values) }

func encodeValue(key string, value any) (json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: key %q: %w", ErrSerialize, key, err)
	}
	return raw, nil
}

// stateJSON is the stored representation. Durations and times are kept in milliseconds.
type stateJSON struct {
	Values    map[string]json.RawMessage `json:"values"`
	TimeoutMS int64                      `json:"timeout_ms"`
	LastUseMS int64                      `json:"last_use_ms"`
}

// MarshalJSON implements json.Marshaler.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Values:    s.values,
		TimeoutMS: s.timeout.Milliseconds(),
		LastUseMS: s.lastUsed.UnixMilli(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. A non-positive timeout is rejected.
func (s *State) UnmarshalJSON(data []byte) error {
	var v stateJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.TimeoutMS <= 0 {
		return errors.New("timeout must be positive")
	}
	if v.Values == nil {
		v.Values = make(map[string]json.RawMessage)
	}

	s.values = v.Values
	s.timeout = time.Duration(v.TimeoutMS) * time.Millisecond
	s.lastUsed = time.UnixMilli(v.LastUseMS)
	return nil
}

func decodeState(blob []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, errors.Join(ErrCorruptState, err)
	}
	return &s, nil
}
