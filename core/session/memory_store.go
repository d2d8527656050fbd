package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/serversession/core/logger"
)

// DefaultSweepInterval is how often the reaper looks for expired sessions.
const DefaultSweepInterval = time.Second

// MemoryStore keeps session states in process memory as JSON blobs.
// A background reaper started with Start or Run evicts expired entries.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte

	defaultTimeout atomic.Int64

	// Configuration
	sweepInterval   time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	now             func() time.Time

	// Lifecycle
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	running   atomic.Bool

	// Observability metrics
	created atomic.Int64
	removed atomic.Int64
	expired atomic.Int64
	corrupt atomic.Int64
}

// StoreStats provides observability metrics for monitoring and debugging.
type StoreStats struct {
	Active  int   // Current number of stored sessions
	Created int64 // Total number of sessions stored for the first time
	Removed int64 // Total number of sessions removed explicitly
	Expired int64 // Total number of sessions evicted by the reaper
	Corrupt int64 // Total number of undecodable entries dropped by the reaper
	Running bool  // Whether the reaper is running
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithDefaultTimeout sets the timeout given to states created by NewState.
func WithDefaultTimeout(timeout time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if timeout > 0 {
			ms.defaultTimeout.Store(int64(timeout))
		}
	}
}

// WithSweepInterval sets how often the reaper runs.
func WithSweepInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if interval > 0 {
			ms.sweepInterval = interval
		}
	}
}

// WithShutdownTimeout sets how long Stop waits for an in-flight sweep.
func WithShutdownTimeout(timeout time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if timeout > 0 {
			ms.shutdownTimeout = timeout
		}
	}
}

// WithLogger sets the logger for internal operations.
func WithLogger(log *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if log != nil {
			ms.logger = log
		}
	}
}

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates an empty store. Call Start or Run to launch the reaper.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		entries:         make(map[string][]byte),
		sweepInterval:   DefaultSweepInterval,
		shutdownTimeout: 30 * time.Second,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             time.Now,
	}
	ms.defaultTimeout.Store(int64(DefaultTimeout))

	for _, opt := range opts {
		opt(ms)
	}

	return ms
}

// GetState returns a decoded snapshot of the state stored under id.
func (ms *MemoryStore) GetState(ctx context.Context, id string) (*State, bool) {
	ms.mu.RLock()
	blob, ok := ms.entries[id]
	ms.mu.RUnlock()

	if !ok {
		return nil, false
	}

	state, err := decodeState(blob)
	if err != nil {
		ms.logger.WarnContext(ctx, "dropping undecodable session on read",
			logger.Component("session.store"),
			logger.SessionID(id),
			logger.Error(err))
		return nil, false
	}

	// Expired entries are never handed out, even if the reaper has not run yet.
	if state.IsExpired(ms.now()) {
		return nil, false
	}

	return state, true
}

// SetState upserts state under id. The state's last use time is set to now,
// which restarts its inactivity timeout.
func (ms *MemoryStore) SetState(ctx context.Context, id string, state *State) error {
	if state == nil {
		return ErrNilState
	}

	state.lastUsed = ms.now()
	blob, err := json.Marshal(state)
	if err != nil {
		return errors.Join(ErrSaveState, err)
	}

	ms.mu.Lock()
	_, exists := ms.entries[id]
	ms.entries[id] = blob
	ms.mu.Unlock()

	if !exists {
		ms.created.Add(1)
	}
	return nil
}

// RemoveState deletes id from the store.
func (ms *MemoryStore) RemoveState(ctx context.Context, id string) error {
	ms.mu.Lock()
	_, exists := ms.entries[id]
	delete(ms.entries, id)
	ms.mu.Unlock()

	if exists {
		ms.removed.Add(1)
	}
	return nil
}

// NewState returns an empty state carrying the current default timeout.
func (ms *MemoryStore) NewState() *State {
	return newState(ms.DefaultTimeout(), ms.now())
}

// DefaultTimeout returns the timeout given to new states.
func (ms *MemoryStore) DefaultTimeout() time.Duration {
	return time.Duration(ms.defaultTimeout.Load())
}

// SetDefaultTimeout changes the timeout given to states created from now on.
// Stored states keep their own timeout. Non-positive values are ignored.
func (ms *MemoryStore) SetDefaultTimeout(timeout time.Duration) {
	if timeout > 0 {
		ms.defaultTimeout.Store(int64(timeout))
	}
}

// Sweep removes every expired or undecodable entry under one exclusive lock
// and returns the number of removed entries.
func (ms *MemoryStore) Sweep() int {
	now := ms.now()
	var expired, corrupt int

	ms.mu.Lock()
	for id, blob := range ms.entries {
		state, err := decodeState(blob)
		switch {
		case err != nil:
			corrupt++
		case state.IsExpired(now):
			expired++
		default:
			continue
		}
		delete(ms.entries, id)
	}
	ms.mu.Unlock()

	ms.expired.Add(int64(expired))
	ms.corrupt.Add(int64(corrupt))

	if corrupt > 0 {
		ms.logger.Warn("reaper dropped undecodable sessions",
			logger.Component("session.store"),
			logger.Count("corrupt", corrupt))
	}
	if expired > 0 {
		ms.logger.Debug("reaper evicted expired sessions",
			logger.Component("session.store"),
			logger.Count("expired", expired))
	}

	return expired + corrupt
}

// Start runs the reaper and blocks until ctx is cancelled or Stop is called.
// Only one reaper runs at a time; a concurrent call returns ErrStoreAlreadyStarted.
// Use Run for the errgroup pattern or call this in a goroutine.
func (ms *MemoryStore) Start(ctx context.Context) error {
	ms.lifecycle.Lock()
	if ms.cancel != nil {
		ms.lifecycle.Unlock()
		return ErrStoreAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ms.cancel, ms.done = cancel, done
	ms.lifecycle.Unlock()

	ms.running.Store(true)
	defer func() {
		ms.running.Store(false)
		ms.lifecycle.Lock()
		if ms.done == done {
			ms.cancel, ms.done = nil, nil
		}
		ms.lifecycle.Unlock()
		cancel()
		close(done)
	}()

	ms.logger.InfoContext(ctx, "session reaper started",
		logger.Component("session.store"),
		slog.Duration("sweep_interval", ms.sweepInterval))

	ticker := time.NewTicker(ms.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ms.logger.InfoContext(context.Background(), "session reaper stopping",
				logger.Component("session.store"))
			return ctx.Err()
		case <-ticker.C:
			ms.Sweep()
		}
	}
}

// Stop cancels the reaper and waits for it to exit, bounded by the shutdown timeout.
func (ms *MemoryStore) Stop() error {
	ms.lifecycle.Lock()
	if ms.cancel == nil {
		ms.lifecycle.Unlock()
		return ErrStoreNotStarted
	}
	cancel, done := ms.cancel, ms.done
	ms.cancel, ms.done = nil, nil
	ms.lifecycle.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(ms.shutdownTimeout):
		ms.logger.Warn("session reaper shutdown timeout exceeded",
			logger.Component("session.store"),
			slog.Duration("timeout", ms.shutdownTimeout))
		return fmt.Errorf("session: shutdown timeout exceeded after %s", ms.shutdownTimeout)
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (ms *MemoryStore) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- ms.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = ms.Stop()
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// Stats returns current store statistics. Safe to call at any time.
func (ms *MemoryStore) Stats() StoreStats {
	ms.mu.RLock()
	active := len(ms.entries)
	ms.mu.RUnlock()

	return StoreStats{
		Active:  active,
		Created: ms.created.Load(),
		Removed: ms.removed.Load(),
		Expired: ms.expired.Load(),
		Corrupt: ms.corrupt.Load(),
		Running: ms.running.Load(),
	}
}

// Healthcheck returns an error when the reaper is not running.
func (ms *MemoryStore) Healthcheck(ctx context.Context) error {
	if !ms.running.Load() {
		return ErrStoreNotStarted
	}
	return nil
}
