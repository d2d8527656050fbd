package middleware_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/middleware"
)

// testLogHandler captures log entries for testing
type testLogHandler struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (h *testLogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

func (h *testLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *testLogHandler) WithGroup(string) slog.Handler { return h }

func TestLogging(t *testing.T) {
	t.Parallel()

	serve := func(t *testing.T, cfg middleware.LoggingConfig, h handler.HandlerFunc[ctx]) map[string]any {
		t.Helper()

		logs := &testLogHandler{}
		cfg.Logger = slog.New(logs)
		srv := handler.Handler(h, middleware.RequestIDWithConfig[ctx](middleware.RequestIDConfig{
			Generator: func() string { return "req-1" },
		}), middleware.LoggingWithConfig[ctx](cfg))

		srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/counter", nil))

		require.Len(t, logs.entries, 1)
		return logs.entries[0]
	}

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		entry := serve(t, middleware.LoggingConfig{}, func(ctx) handler.Response {
			return handler.Text(http.StatusOK, "hello")
		})

		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "HTTP request completed", entry["msg"])
		assert.Equal(t, "http", entry["component"])
		assert.Equal(t, http.MethodPost, entry["method"])
		assert.Equal(t, "/counter", entry["path"])
		assert.Equal(t, int64(http.StatusOK), entry["status"])
		assert.Equal(t, int64(5), entry["bytes_out"])
		assert.Equal(t, "req-1", entry["request_id"])
	})

	t.Run("client error", func(t *testing.T) {
		t.Parallel()

		entry := serve(t, middleware.LoggingConfig{}, func(ctx) handler.Response {
			return handler.Status(http.StatusNotFound)
		})
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, int64(http.StatusNotFound), entry["status"])
	})

	t.Run("render error", func(t *testing.T) {
		t.Parallel()

		entry := serve(t, middleware.LoggingConfig{}, func(ctx) handler.Response {
			return func(http.ResponseWriter, *http.Request) error {
				return errors.New("render failed")
			}
		})
		assert.Equal(t, "ERROR", entry["level"])
		assert.Contains(t, entry, "error")
	})

	t.Run("slow request", func(t *testing.T) {
		t.Parallel()

		entry := serve(t, middleware.LoggingConfig{SlowRequestThreshold: time.Nanosecond}, func(ctx) handler.Response {
			time.Sleep(time.Millisecond)
			return handler.Status(http.StatusOK)
		})
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, true, entry["slow_request"])
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		logs := &testLogHandler{}
		srv := handler.Handler(func(ctx) handler.Response {
			return handler.Status(http.StatusOK)
		}, middleware.LoggingWithConfig[ctx](middleware.LoggingConfig{
			Logger: slog.New(logs),
			Skip:   func(handler.Context) bool { return true },
		}))

		srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, logs.entries)
	})
}
