// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads a .env file on first use (github.com/joho/godotenv), parses
// variables into struct fields with github.com/caarlos0/env and validates the
// result with github.com/go-playground/validator `validate` tags.
//
//	type Config struct {
//		Addr   string        `env:"HTTP_ADDR" envDefault:":8080"`
//		Cookie cookie.Config // SESSION_SECRET_KEY, SESSION_COOKIE_*
//		Store  session.Config
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg) // panics on parse or validation errors
package config
