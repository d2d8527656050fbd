package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the target.
	ErrParsingConfig = errors.New("config: failed to parse environment")
	// ErrInvalidConfig is returned when a parsed config fails validation.
	ErrInvalidConfig = errors.New("config: validation failed")
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> T
	validate   = validator.New(validator.WithRequiredStructEnabled())
)

// Load fills cfg from the environment, loading a .env file on first use,
// and validates it with `validate` struct tags. Each type is parsed once;
// later calls for the same type receive the cached value.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// A missing .env file is normal outside development.
		_ = godotenv.Load()
	})

	typ := reflect.TypeFor[T]()
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	var loaded T
	if err := env.Parse(&loaded); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	if err := validate.Struct(loaded); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	actual, _ := cache.LoadOrStore(typ, loaded)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on error. Useful at startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
