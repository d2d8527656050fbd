// Package health provides liveness and readiness probe handlers.
package health

import (
	"net/http"

	"github.com/dmitrymomot/serversession/core/handler"
)

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
func Liveness[C handler.Context](C) handler.Response {
	return handler.Text(http.StatusOK, "ALIVE")
}
