package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/logger"
)

// Readiness verifies all dependencies, e.g. that the session store's reaper
// is running. Returns "READY", or 503 Service Unavailable if any check fails.
//
//	health.Readiness[*handler.RequestContext](log, store.Healthcheck)
func Readiness[C handler.Context](log *slog.Logger, checks ...func(context.Context) error) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					logger.Error(err))
				return handler.Status(http.StatusServiceUnavailable)
			}
		}

		return handler.Text(http.StatusOK, "READY")
	}
}
