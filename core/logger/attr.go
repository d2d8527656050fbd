package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers return an empty Attr for nil or empty input,
// so calls like log.Info("msg", logger.Error(err)) need no nil checks.

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event creates an attribute for event names.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Method creates an attribute for HTTP methods.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path creates an attribute for URL paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// sessionIDPrefix is how many leading characters of a session id are logged.
const sessionIDPrefix = 6

// SessionID creates an attribute for a session id. Only a short prefix is
// logged; the full id is a bearer credential.
func SessionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	if len(id) > sessionIDPrefix {
		id = id[:sessionIDPrefix] + "…"
	}
	return slog.String("session_id", id)
}

// SessionStatus creates an attribute for a session status.
func SessionStatus(status interface{ String() string }) slog.Attr {
	return slog.String("session_status", status.String())
}

// RequestID creates an attribute for request ids.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// StatusCode creates an attribute for HTTP status codes.
func StatusCode(code int) slog.Attr {
	return slog.Int("status", code)
}

// BytesOut creates an attribute for response sizes.
func BytesOut(n int64) slog.Attr {
	return slog.Int64("bytes_out", n)
}

// RemoteAddr creates an attribute for client addresses.
func RemoteAddr(addr string) slog.Attr {
	return slog.String("remote_addr", addr)
}
