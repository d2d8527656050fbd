package middleware

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/serversession/core/cookie"
	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/logger"
	"github.com/dmitrymomot/serversession/core/session"
)

type sessionKey struct{}

// SessionCookie resolves and issues the session id carried in a cookie.
// *cookie.Codec implements it.
type SessionCookie interface {
	GetSessionID(r *http.Request) (isNew bool, id string)
	SetCookie(w http.ResponseWriter, id string) error
	RemoveCookie(w http.ResponseWriter)
}

// ServerSessionConfig configures the server-side session middleware.
type ServerSessionConfig[C handler.Context] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Store holds session states (required)
	Store session.Store
	// Cookie resolves and issues the session cookie (required)
	Cookie SessionCookie
	// Logger for structured logging (default: slog with io.Discard)
	Logger *slog.Logger
	// ErrorHandler renders the response when the session cannot be finalized,
	// e.g. the cookie overflows or the store rejects the state.
	// Default: 500 Internal Server Error.
	ErrorHandler func(ctx C, err error) handler.Response
}

// ServerSession creates middleware that attaches a server-side session to
// every request and reconciles it after the handler returns.
//
// Per request the middleware:
//   - resolves the session id from the cookie (a fresh id when missing or forged)
//   - loads the stored state, or starts a new one when the id is unknown or expired
//   - exposes a *session.Session through GetSession to the handler
//   - issues the cookie for new sessions, then persists, rotates or deletes the
//     state according to the session status
//
// Usage:
//
//	store := session.NewMemoryStore()
//	codec := cookie.MustNew(secret, cookie.Private)
//	mux.Handle("/", handler.Handler(index,
//		middleware.ServerSession[*handler.RequestContext](store, codec)))
//
//	func index(ctx *handler.RequestContext) handler.Response {
//		sess := middleware.MustGetSession(ctx)
//		var n int
//		if _, err := sess.Get("counter", &n); err != nil {
//			return handler.Status(http.StatusInternalServerError)
//		}
//		_ = sess.Set("counter", n+1)
//		return handler.Text(http.StatusOK, "Welcome!")
//	}
func ServerSession[C handler.Context](store session.Store, codec SessionCookie) handler.Middleware[C] {
	return ServerSessionWithConfig(ServerSessionConfig[C]{
		Store:  store,
		Cookie: codec,
	})
}

// ServerSessionWithConfig creates the session middleware with custom configuration.
//
//	cfg := middleware.ServerSessionConfig[*handler.RequestContext]{
//		Store:  store,
//		Cookie: codec,
//		Logger: log,
//		Skip: func(ctx *handler.RequestContext) bool {
//			return ctx.Request().URL.Path == "/metrics"
//		},
//	}
//	mw := middleware.ServerSessionWithConfig(cfg)
func ServerSessionWithConfig[C handler.Context](cfg ServerSessionConfig[C]) handler.Middleware[C] {
	if cfg.Store == nil {
		panic("session middleware: store is required")
	}
	if cfg.Cookie == nil {
		panic("session middleware: cookie codec is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx C, err error) handler.Response {
			return handler.Status(http.StatusInternalServerError)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			isNew, id := cfg.Cookie.GetSessionID(ctx.Request())

			state, ok := cfg.Store.GetState(ctx, id)
			if !ok {
				if !isNew {
					cfg.Logger.DebugContext(ctx, "session not found, starting a new one",
						logger.Component("session"),
						logger.SessionID(id))
					id = cookie.GenerateID()
				}
				isNew = true
				state = cfg.Store.NewState()
			}

			ctx.SetValue(sessionKey{}, session.Attach(state))

			resp := next(ctx)

			// The handler may have dropped the session from the context.
			sess, ok := GetSession(ctx)
			if !ok {
				return resp
			}

			status, state := sess.TakeChanges()
			w := ctx.ResponseWriter()

			if status == session.Renewed && !isNew {
				return rotate(ctx, cfg, w, id, state, resp)
			}

			if isNew {
				if err := cfg.Cookie.SetCookie(w, id); err != nil {
					cfg.Logger.ErrorContext(ctx, "failed to set session cookie",
						logger.Component("session"),
						logger.SessionID(id),
						logger.Error(err))
					return cfg.ErrorHandler(ctx, err)
				}
			}

			switch status {
			case session.Purged:
				cfg.Cookie.RemoveCookie(w)
				if err := cfg.Store.RemoveState(ctx, id); err != nil {
					cfg.Logger.WarnContext(ctx, "failed to remove purged session",
						logger.Component("session"),
						logger.SessionID(id),
						logger.Error(err))
				}
			default:
				// Unchanged sessions are written too, which restarts their timeout.
				if err := cfg.Store.SetState(ctx, id, state); err != nil {
					cfg.Logger.ErrorContext(ctx, "failed to store session",
						logger.Component("session"),
						logger.SessionID(id),
						logger.SessionStatus(status),
						logger.Error(err))
					return cfg.ErrorHandler(ctx, err)
				}
			}

			return resp
		}
	}
}

// rotate moves state from oldID to a fresh id. The new entry is stored before
// its cookie is issued and the old entry is removed last, so any failure
// leaves the session under oldID untouched.
func rotate[C handler.Context](
	ctx C,
	cfg ServerSessionConfig[C],
	w http.ResponseWriter,
	oldID string,
	state *session.State,
	resp handler.Response,
) handler.Response {
	id := cookie.GenerateID()

	if err := cfg.Store.SetState(ctx, id, state); err != nil {
		cfg.Logger.ErrorContext(ctx, "failed to store rotated session",
			logger.Component("session"),
			logger.SessionID(id),
			logger.Error(err))
		return cfg.ErrorHandler(ctx, err)
	}

	if err := cfg.Cookie.SetCookie(w, id); err != nil {
		cfg.Logger.ErrorContext(ctx, "failed to set session cookie",
			logger.Component("session"),
			logger.SessionID(id),
			logger.Error(err))
		if err := cfg.Store.RemoveState(ctx, id); err != nil {
			cfg.Logger.WarnContext(ctx, "failed to remove unissued session",
				logger.Component("session"),
				logger.SessionID(id),
				logger.Error(err))
		}
		return cfg.ErrorHandler(ctx, err)
	}

	if err := cfg.Store.RemoveState(ctx, oldID); err != nil {
		cfg.Logger.WarnContext(ctx, "failed to remove rotated session",
			logger.Component("session"),
			logger.SessionID(oldID),
			logger.Error(err))
	}

	cfg.Logger.DebugContext(ctx, "session id rotated",
		logger.Component("session"),
		logger.SessionID(id))
	return resp
}

// GetSession retrieves the session handle from context.
// Every call within one request returns the same handle.
func GetSession(ctx handler.Context) (*session.Session, bool) {
	if ctx == nil {
		return nil, false
	}

	sess, ok := ctx.Value(sessionKey{}).(*session.Session)
	return sess, ok && sess != nil
}

// MustGetSession retrieves the session from context or panics if not found.
// Use this when session existence is guaranteed by middleware.
func MustGetSession(ctx handler.Context) *session.Session {
	sess, ok := GetSession(ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

// DetachSession removes the session from the context. The middleware then
// leaves the response and the store untouched for this request.
func DetachSession(ctx handler.Context) {
	ctx.SetValue(sessionKey{}, (*session.Session)(nil))
}
