package handler

import (
	"context"
	"net/http"
	"time"
)

// Context defines the contract for request contexts: the request, the
// response writer, and a request-scoped value slot.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	SetValue(key, val any)
}

// RequestContext is the default Context implementation. It delegates to the
// request's context and stores values in it.
type RequestContext struct {
	w http.ResponseWriter
	r *http.Request
}

// NewContext creates a RequestContext for one request.
func NewContext(w http.ResponseWriter, r *http.Request) *RequestContext {
	return &RequestContext{w: w, r: r}
}

// Deadline returns the time when work done on behalf of this context should be canceled.
func (c *RequestContext) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

// Done returns a channel that's closed when work done on behalf of this context should be canceled.
func (c *RequestContext) Done() <-chan struct{} {
	return c.r.Context().Done()
}

// Err returns a non-nil error value after Done is closed.
func (c *RequestContext) Err() error {
	return c.r.Context().Err()
}

// Value returns the value associated with this context for key.
func (c *RequestContext) Value(key any) any {
	return c.r.Context().Value(key)
}

// SetValue stores a value in the request's context.
func (c *RequestContext) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}

// Request returns the HTTP request associated with this context.
func (c *RequestContext) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the HTTP response writer associated with this context.
func (c *RequestContext) ResponseWriter() http.ResponseWriter {
	return c.w
}
