package main

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/health"
	"github.com/dmitrymomot/serversession/core/logger"
	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/middleware"
)

type ctx = *handler.RequestContext

// firstVisitTimeout replaces the store default on a session's first visit.
const firstVisitTimeout = 5 * time.Minute

func index(c ctx) handler.Response {
	sess := middleware.MustGetSession(c)

	var counter int
	found, err := sess.Get("counter", &counter)
	if err != nil {
		return handler.Status(http.StatusInternalServerError)
	}
	if !found {
		sess.UpdateTimeout(firstVisitTimeout)
	}

	counter++
	if err := sess.Set("counter", counter); err != nil {
		return handler.Status(http.StatusInternalServerError)
	}

	return handler.Text(http.StatusOK, "Welcome! counter: "+strconv.Itoa(counter))
}

func logout(c ctx) handler.Response {
	middleware.MustGetSession(c).Purge()
	return handler.Text(http.StatusOK, "Logged out")
}

func renew(c ctx) handler.Response {
	middleware.MustGetSession(c).Renew()
	return handler.Text(http.StatusOK, "Session renewed")
}

// routes builds the demo HTTP handler.
func routes(
	log *slog.Logger,
	store *session.MemoryStore,
	codec middleware.SessionCookie,
	registry *prometheus.Registry,
) http.Handler {
	common := []handler.Middleware[ctx]{
		middleware.RequestID[ctx](),
		middleware.LoggingWithLogger[ctx](log),
	}
	withSession := slices.Concat(common, []handler.Middleware[ctx]{
		middleware.ServerSessionWithConfig(middleware.ServerSessionConfig[ctx]{
			Store:  store,
			Cookie: codec,
			Logger: log,
		}),
	})

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", handler.Handler(index, withSession...))
	mux.Handle("POST /logout", handler.Handler(logout, withSession...))
	mux.Handle("POST /renew", handler.Handler(renew, withSession...))
	mux.Handle("GET /health/live", handler.Handler(health.Liveness[ctx]))
	mux.Handle("GET /health/ready", handler.Handler(health.Readiness[ctx](log, store.Healthcheck), common...))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(log.Handler(), slog.LevelError),
	}))

	log.Debug("routes registered", logger.Component("http"))
	return mux
}
