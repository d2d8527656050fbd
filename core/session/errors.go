package session

import "errors"

var (
	// ErrSerialize is returned when a session value cannot be encoded.
	ErrSerialize = errors.New("session: failed to serialize value")
	// ErrDeserialize is returned when a stored session value cannot be decoded into the destination.
	ErrDeserialize = errors.New("session: failed to deserialize value")
	// ErrNilState is returned when a nil state is passed to a store.
	ErrNilState = errors.New("session: state is nil")
	// ErrSaveState is returned when writing a state to the store fails.
	ErrSaveState = errors.New("session: failed to save state")
	// ErrCorruptState is returned when a stored state blob cannot be decoded.
	ErrCorruptState = errors.New("session: corrupt state")
	// ErrStoreAlreadyStarted is returned by Start when the reaper is already running.
	ErrStoreAlreadyStarted = errors.New("session: store already started")
	// ErrStoreNotStarted is returned by Stop and Healthcheck when the reaper is not running.
	ErrStoreNotStarted = errors.New("session: store not started")
)
