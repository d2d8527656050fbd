package cookie

import (
	"net/http"
	"time"
)

// Config provides environment-based configuration for the session cookie codec.
type Config struct {
	SecretKey string        `env:"SESSION_SECRET_KEY" validate:"required,min=32"`
	Security  string        `env:"SESSION_COOKIE_SECURITY" envDefault:"signed" validate:"oneof=signed private"`
	Name      string        `env:"SESSION_COOKIE_NAME" envDefault:"server-session" validate:"required"`
	Path      string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain    string        `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	Secure    bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	HttpOnly  bool          `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite  http.SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"0"`
	MaxAge    time.Duration `env:"SESSION_COOKIE_MAX_AGE" envDefault:"0s"`
	ExpiresIn time.Duration `env:"SESSION_COOKIE_EXPIRES_IN" envDefault:"0s"`
	Lazy      bool          `env:"SESSION_COOKIE_LAZY" envDefault:"false"`
}

// DefaultConfig returns a Config with the codec defaults. SecretKey must still be set.
func DefaultConfig() Config {
	return Config{
		Security: Signed.String(),
		Name:     DefaultName,
		Path:     "/",
		HttpOnly: true,
	}
}

// NewFromConfig creates a Codec from configuration.
// User-provided options are applied after the config values and override them.
func NewFromConfig(cfg Config, opts ...Option) (*Codec, error) {
	security, err := ParseSecurity(cfg.Security)
	if err != nil {
		return nil, err
	}

	configOpts := []Option{
		WithDomain(cfg.Domain),
		WithSecure(cfg.Secure),
		WithHTTPOnly(cfg.HttpOnly),
		WithSameSite(cfg.SameSite),
		WithMaxAge(cfg.MaxAge),
		WithExpiresIn(cfg.ExpiresIn),
		WithLazy(cfg.Lazy),
	}
	if cfg.Name != "" {
		configOpts = append(configOpts, WithName(cfg.Name))
	}
	if cfg.Path != "" {
		configOpts = append(configOpts, WithPath(cfg.Path))
	}

	return New([]byte(cfg.SecretKey), security, append(configOpts, opts...)...)
}
