package main

import (
	"github.com/dmitrymomot/serversession/core/cookie"
	"github.com/dmitrymomot/serversession/core/server"
	"github.com/dmitrymomot/serversession/core/session"
)

// Config is the demo server configuration, loaded from the environment.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"counter" validate:"required"`
	Debug   bool   `env:"DEBUG" envDefault:"false"`

	Server  server.Config
	Cookie  cookie.Config
	Session session.Config
}
