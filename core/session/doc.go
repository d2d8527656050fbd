// Package session holds server-side session state and the per-request handle
// that application code uses to read and change it.
//
// # State and store
//
// A State is a bag of JSON-encoded values with an inactivity timeout. Stores
// keep states keyed by an opaque session id. MemoryStore keeps them in process
// memory behind a single RWMutex, and a reaper removes every entry idle for
// longer than its timeout:
//
//	store := session.NewMemoryStore(
//		session.WithDefaultTimeout(20*time.Minute),
//		session.WithLogger(log),
//	)
//	eg.Go(store.Run(ctx)) // reaper sweeps every second until ctx is done
//
// Writing a state with SetState restarts its timeout (sliding expiration).
// Entries that cannot be decoded are treated as absent and dropped by the reaper.
//
// # Handle and status
//
// A *Session wraps one request's copy of a state together with a Status:
//
//	Unchanged -> Changed   on Set, Remove, Clear, UpdateTimeout
//	any       -> Renewed   on Renew (except Purged)
//	any       -> Purged    on Purge
//
// Purged is absorbing. Once purged, a session ignores every further change.
// At the end of the request TakeChanges hands the state and status to the
// middleware, which persists, rotates or deletes the session accordingly.
//
//	var count int
//	if ok, err := sess.Get("counter", &count); err != nil {
//		return err
//	} else if !ok {
//		sess.UpdateTimeout(5 * time.Minute)
//	}
//	if err := sess.Set("counter", count+1); err != nil {
//		return err
//	}
//
// # Metrics
//
// NewCollector exposes MemoryStore statistics to Prometheus.
package session
