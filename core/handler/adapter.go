package handler

import (
	"log/slog"
	"net/http"
)

// Handler adapts h, wrapped with mws, to an http.Handler using RequestContext.
// Render errors are logged with slog.Default and answered with 500 when
// nothing has been written yet.
func Handler(h HandlerFunc[*RequestContext], mws ...Middleware[*RequestContext]) http.Handler {
	return HandlerWithContext(NewContext, func(ctx *RequestContext, err error) {
		slog.Default().ErrorContext(ctx, "render response", "error", err)
	}, h, mws...)
}

// HandlerWithContext is like Handler for a custom Context type built by newCtx.
func HandlerWithContext[C Context](
	newCtx func(http.ResponseWriter, *http.Request) C,
	onError ErrorHandler[C],
	h HandlerFunc[C],
	mws ...Middleware[C],
) http.Handler {
	chained := Chain(h, mws...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &trackingWriter{ResponseWriter: w}
		ctx := newCtx(tw, r)

		resp := chained(ctx)
		if resp == nil {
			return
		}
		if err := resp(tw, ctx.Request()); err != nil {
			if onError != nil {
				onError(ctx, err)
			}
			if !tw.written {
				http.Error(tw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	})
}

// trackingWriter records whether the response has been started.
type trackingWriter struct {
	http.ResponseWriter
	written bool
}

func (w *trackingWriter) WriteHeader(status int) {
	if !w.written {
		w.written = true
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
