// Package handler defines the host boundary the session middleware plugs into:
// a Context exposing the request, the response writer and a request-scoped
// value slot; handlers returning a lazily rendered Response; and Middleware
// wrapping handlers.
//
// Handler adapts a chain to net/http:
//
//	mux.Handle("/", handler.Handler(index,
//		middleware.ServerSession[*handler.RequestContext](store, codec),
//	))
//
//	func index(ctx *handler.RequestContext) handler.Response {
//		return handler.Text(http.StatusOK, "Welcome!")
//	}
//
// Middleware may add response headers through ctx.ResponseWriter() before
// returning; the Response of the inner handler is rendered afterwards.
package handler
