package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/serversession/core/handler"
)

type ctxKey struct{}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var trace []string
	mw := func(name string) handler.Middleware[*handler.RequestContext] {
		return func(next handler.HandlerFunc[*handler.RequestContext]) handler.HandlerFunc[*handler.RequestContext] {
			return func(ctx *handler.RequestContext) handler.Response {
				trace = append(trace, name)
				return next(ctx)
			}
		}
	}

	h := handler.Handler(func(ctx *handler.RequestContext) handler.Response {
		trace = append(trace, "handler")
		return handler.Text(http.StatusOK, "ok")
	}, mw("outer"), mw("inner"))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRequestContext_SetValue(t *testing.T) {
	t.Parallel()

	setter := func(next handler.HandlerFunc[*handler.RequestContext]) handler.HandlerFunc[*handler.RequestContext] {
		return func(ctx *handler.RequestContext) handler.Response {
			ctx.SetValue(ctxKey{}, "value")
			return next(ctx)
		}
	}

	h := handler.Handler(func(ctx *handler.RequestContext) handler.Response {
		v, _ := ctx.Value(ctxKey{}).(string)
		r, _ := ctx.Request().Context().Value(ctxKey{}).(string)
		return handler.Text(http.StatusOK, v+"/"+r)
	}, setter)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "value/value", w.Body.String())
}

func TestHandler_RenderError(t *testing.T) {
	t.Parallel()

	h := handler.Handler(func(ctx *handler.RequestContext) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			return errors.New("render failed")
		}
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	err := handler.Status(http.StatusTeapot)(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
}
