package cookie

import (
	"net/http"
	"time"
)

// DefaultName is the session cookie name used when none is configured.
const DefaultName = "server-session"

// Options configures the attributes of the session cookie.
type Options struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
	// MaxAge is rendered as the Max-Age attribute when positive.
	MaxAge time.Duration
	// ExpiresIn is rendered as an Expires attribute relative to the time
	// the cookie is issued. MaxAge and ExpiresIn may both be set.
	ExpiresIn time.Duration
	// Lazy suppresses the cookie while no session id is available.
	Lazy bool
}

// Option is a functional option for configuring cookie options.
type Option func(*Options)

// WithName sets the cookie name.
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithPath sets the cookie path attribute.
func WithPath(path string) Option {
	return func(o *Options) {
		o.Path = path
	}
}

// WithDomain sets the cookie domain attribute.
func WithDomain(domain string) Option {
	return func(o *Options) {
		o.Domain = domain
	}
}

// WithSecure sets the secure flag, ensuring cookies are only sent over HTTPS.
func WithSecure(secure bool) Option {
	return func(o *Options) {
		o.Secure = secure
	}
}

// WithHTTPOnly prevents JavaScript access to the cookie.
func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) {
		o.HttpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute for CSRF protection.
func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) {
		o.SameSite = sameSite
	}
}

// WithMaxAge sets the Max-Age attribute. Non-positive values leave it unset.
func WithMaxAge(d time.Duration) Option {
	return func(o *Options) {
		o.MaxAge = d
	}
}

// WithExpiresIn sets the Expires attribute relative to issue time.
func WithExpiresIn(d time.Duration) Option {
	return func(o *Options) {
		o.ExpiresIn = d
	}
}

// WithLazy suppresses cookie emission for empty session ids.
func WithLazy(lazy bool) Option {
	return func(o *Options) {
		o.Lazy = lazy
	}
}

func defaultOptions() Options {
	return Options{
		Name:     DefaultName,
		Path:     "/",
		HttpOnly: true,
	}
}

// applyOptions copies base and applies opts to the copy so shared defaults are never mutated.
func applyOptions(base Options, opts []Option) Options {
	result := base
	for _, opt := range opts {
		opt(&result)
	}
	return result
}
