// Package middleware provides handler.Middleware components for the session
// stack: server-side sessions, request IDs and request logging.
//
// All middleware follow one pattern: a generic constructor with defaults,
// a WithConfig variant taking a config struct with an optional Skip func,
// and context helpers for retrieving stored values.
//
// # Server-side sessions
//
// ServerSession resolves the session id from a signed or encrypted cookie,
// loads its state from a session.Store and exposes a *session.Session to the
// handler. After the handler returns it issues the cookie for new sessions and
// persists, rotates or deletes the state depending on the session status.
//
//	store := session.NewMemoryStore()
//	go store.Start(ctx)
//	codec := cookie.MustNew(secret, cookie.Private)
//
//	h := handler.Handler(index,
//		middleware.RequestID[*handler.RequestContext](),
//		middleware.Logging[*handler.RequestContext](),
//		middleware.ServerSession[*handler.RequestContext](store, codec),
//	)
//
//	func index(ctx *handler.RequestContext) handler.Response {
//		sess := middleware.MustGetSession(ctx)
//		if err := sess.Set("visited", true); err != nil {
//			return handler.Status(http.StatusInternalServerError)
//		}
//		return handler.Text(http.StatusOK, "hello")
//	}
//
// Call Purge to log out and Renew to rotate the session id, e.g. after
// authentication.
//
// # Request ID
//
// RequestID assigns a UUID to each request, stores it in the context and echoes
// it in the X-Request-ID header. Retrieve it with GetRequestID.
//
// # Logging
//
// Logging writes one structured record per completed request with method,
// path, status, size, duration and request ID. Place it after RequestID.
package middleware
