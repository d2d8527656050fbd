package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/core/cookie"
	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/middleware"
)

type ctx = *handler.RequestContext

var testKey = []byte("test-secret-key-32-characters!!!")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// counter increments the "counter" value and writes it to the body.
func counter(c ctx) handler.Response {
	sess := middleware.MustGetSession(c)

	var n int
	if _, err := sess.Get("counter", &n); err != nil {
		return handler.Status(http.StatusInternalServerError)
	}
	n++
	if err := sess.Set("counter", n); err != nil {
		return handler.Status(http.StatusInternalServerError)
	}
	return handler.Text(http.StatusOK, strconv.Itoa(n))
}

// peek writes the current counter without touching the session.
func peek(c ctx) handler.Response {
	var n int
	_, _ = middleware.MustGetSession(c).Get("counter", &n)
	return handler.Text(http.StatusOK, strconv.Itoa(n))
}

func do(t *testing.T, h http.Handler, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, cookie.DefaultName, cookies[0].Name)
	return cookies[0]
}

// idOf decodes the session id carried by c.
func idOf(t *testing.T, codec *cookie.Codec, c *http.Cookie) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	isNew, id := codec.GetSessionID(req)
	require.False(t, isNew)
	return id
}

type fixture struct {
	clock *fakeClock
	store *session.MemoryStore
	codec *cookie.Codec
}

func newFixture(t *testing.T, security cookie.Security) *fixture {
	t.Helper()

	clock := newFakeClock()
	codec, err := cookie.New(testKey, security)
	require.NoError(t, err)

	return &fixture{
		clock: clock,
		store: session.NewMemoryStore(
			session.WithClock(clock.Now),
			session.WithDefaultTimeout(30*time.Minute),
		),
		codec: codec,
	}
}

func (f *fixture) handler(h handler.HandlerFunc[ctx], mws ...handler.Middleware[ctx]) http.Handler {
	return handler.Handler(h, append([]handler.Middleware[ctx]{
		middleware.ServerSession[ctx](f.store, f.codec),
	}, mws...)...)
}

func TestServerSession_NewClient(t *testing.T) {
	t.Parallel()

	for _, security := range []cookie.Security{cookie.Signed, cookie.Private} {
		t.Run(security.String(), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, security)
			h := f.handler(peek)

			resp, body := do(t, h)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "0", body)
			assert.Len(t, resp.Header.Values("Set-Cookie"), 1)

			c := sessionCookie(t, resp)
			assert.True(t, c.HttpOnly)
			assert.Equal(t, "/", c.Path)

			id := idOf(t, f.codec, c)
			assert.True(t, cookie.ValidID(id))

			state, ok := f.store.GetState(context.Background(), id)
			require.True(t, ok)
			assert.Equal(t, 30*time.Minute, state.Timeout())
			assert.Equal(t, 1, f.store.Stats().Active)
		})
	}
}

func TestServerSession_RoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t, cookie.Private)
	h := f.handler(counter)

	respA, body := do(t, h)
	assert.Equal(t, "1", body)
	c := sessionCookie(t, respA)

	respB, body := do(t, h, c)
	assert.Equal(t, "2", body)
	assert.Empty(t, respB.Cookies(), "known session must not be re-issued")

	_, body = do(t, f.handler(peek), c)
	assert.Equal(t, "2", body)
	assert.Equal(t, 1, f.store.Stats().Active)
}

func TestServerSession_Purge(t *testing.T) {
	t.Parallel()

	t.Run("existing session", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, cookie.Signed)
		resp, _ := do(t, f.handler(counter))
		c := sessionCookie(t, resp)
		id := idOf(t, f.codec, c)

		logout := f.handler(func(c ctx) handler.Response {
			sess := middleware.MustGetSession(c)
			sess.Purge()

			require.NoError(t, sess.Set("counter", 42))
			var n int
			found, err := sess.Get("counter", &n)
			require.NoError(t, err)
			assert.False(t, found, "purged session must not be resurrected")
			return handler.Status(http.StatusNoContent)
		})

		resp, _ = do(t, logout, c)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		removal := sessionCookie(t, resp)
		assert.Empty(t, removal.Value)
		assert.Negative(t, removal.MaxAge)
		assert.True(t, removal.Expires.Before(time.Now()))

		_, ok := f.store.GetState(context.Background(), id)
		assert.False(t, ok)
		assert.Equal(t, 0, f.store.Stats().Active)

		// The purged cookie starts over.
		_, body := do(t, f.handler(counter), c)
		assert.Equal(t, "1", body)
	})

	t.Run("new session issues then removes the cookie", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, cookie.Signed)
		h := f.handler(func(c ctx) handler.Response {
			middleware.MustGetSession(c).Purge()
			return handler.Status(http.StatusOK)
		})

		resp, _ := do(t, h)
		cookies := resp.Cookies()
		require.Len(t, cookies, 2)
		assert.NotEmpty(t, cookies[0].Value)
		assert.Empty(t, cookies[1].Value)
		assert.Negative(t, cookies[1].MaxAge)
		assert.Equal(t, 0, f.store.Stats().Active)
	})
}

func TestServerSession_Expiry(t *testing.T) {
	t.Parallel()

	f := newFixture(t, cookie.Signed)
	h := f.handler(counter)

	resp, _ := do(t, h)
	c := sessionCookie(t, resp)
	oldID := idOf(t, f.codec, c)

	f.clock.Advance(31 * time.Minute)
	assert.Equal(t, 1, f.store.Sweep())

	resp, body := do(t, h, c)
	assert.Equal(t, "1", body, "expired session is treated as new")
	newID := idOf(t, f.codec, sessionCookie(t, resp))
	assert.NotEqual(t, oldID, newID)
}

func TestServerSession_SlidingExpiration(t *testing.T) {
	t.Parallel()

	f := newFixture(t, cookie.Signed)

	resp, _ := do(t, f.handler(counter))
	c := sessionCookie(t, resp)

	// Read-only requests refresh the last use time.
	for range 3 {
		f.clock.Advance(20 * time.Minute)
		resp, body := do(t, f.handler(peek), c)
		assert.Equal(t, "1", body)
		assert.Empty(t, resp.Cookies())
		assert.Zero(t, f.store.Sweep())
	}
}

func TestServerSession_CustomTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, cookie.Signed)
	h := f.handler(func(c ctx) handler.Response {
		middleware.MustGetSession(c).UpdateTimeout(5 * time.Minute)
		return handler.Status(http.StatusOK)
	})

	resp, _ := do(t, h)
	id := idOf(t, f.codec, sessionCookie(t, resp))

	state, ok := f.store.GetState(context.Background(), id)
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, state.Timeout())

	f.clock.Advance(6 * time.Minute)
	assert.Equal(t, 1, f.store.Sweep())
}

func TestServerSession_Tamper(t *testing.T) {
	t.Parallel()

	for _, security := range []cookie.Security{cookie.Signed, cookie.Private} {
		t.Run(security.String(), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, security)
			h := f.handler(counter)

			resp, _ := do(t, h)
			c := sessionCookie(t, resp)
			oldID := idOf(t, f.codec, c)

			forged := &http.Cookie{Name: c.Name, Value: flipFirst(c.Value)}
			resp, body := do(t, h, forged)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "1", body, "forged cookie must not reach the issued session")

			newID := idOf(t, f.codec, sessionCookie(t, resp))
			assert.NotEqual(t, oldID, newID)
			assert.Equal(t, 2, f.store.Stats().Active)
		})
	}
}

func flipFirst(s string) string {
	b := []byte(s)
	if b[0] == 'A' {
		b[0] = 'B'
	} else {
		b[0] = 'A'
	}
	return string(b)
}

func TestServerSession_Renew(t *testing.T) {
	t.Parallel()

	f := newFixture(t, cookie.Private)

	resp, _ := do(t, f.handler(counter))
	oldCookie := sessionCookie(t, resp)
	oldID := idOf(t, f.codec, oldCookie)

	renew := f.handler(func(c ctx) handler.Response {
		middleware.MustGetSession(c).Renew()
		return handler.Status(http.StatusOK)
	})

	resp, _ = do(t, renew, oldCookie)
	newCookie := sessionCookie(t, resp)
	newID := idOf(t, f.codec, newCookie)
	assert.NotEqual(t, oldID, newID)

	_, ok := f.store.GetState(context.Background(), oldID)
	assert.False(t, ok, "old id must be dropped")

	_, body := do(t, f.handler(counter), newCookie)
	assert.Equal(t, "2", body, "state survives rotation")

	_, body = do(t, f.handler(peek), oldCookie)
	assert.Equal(t, "0", body)
}

func TestServerSession_Failures(t *testing.T) {
	t.Parallel()

	t.Run("cookie overflow renders error handler response", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		var got error
		h := handler.Handler(counter, middleware.ServerSessionWithConfig(middleware.ServerSessionConfig[ctx]{
			Store:  store,
			Cookie: overflowCookie{},
			ErrorHandler: func(c ctx, err error) handler.Response {
				got = err
				return handler.Status(http.StatusRequestHeaderFieldsTooLarge)
			},
		}))

		resp, _ := do(t, h)
		assert.Equal(t, http.StatusRequestHeaderFieldsTooLarge, resp.StatusCode)
		assert.ErrorIs(t, got, cookie.ErrOverflow)
		assert.Empty(t, resp.Header.Values("Set-Cookie"))
		assert.Equal(t, 0, store.Stats().Active, "nothing is persisted")
	})

	t.Run("default error handler", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		h := handler.Handler(counter, middleware.ServerSession[ctx](store, overflowCookie{}))

		resp, _ := do(t, h)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Empty(t, resp.Header.Values("Set-Cookie"))
	})

	t.Run("renew with store failure keeps the old session", func(t *testing.T) {
		t.Parallel()

		store := &toggleStore{MemoryStore: session.NewMemoryStore()}
		codec := cookie.MustNew(testKey, cookie.Signed)
		mw := middleware.ServerSession[ctx](store, codec)

		resp, body := do(t, handler.Handler(counter, mw))
		require.Equal(t, "1", body)
		oldCookie := sessionCookie(t, resp)

		store.fail.Store(true)
		resp, _ = do(t, handler.Handler(func(c ctx) handler.Response {
			middleware.MustGetSession(c).Renew()
			return handler.Status(http.StatusOK)
		}, mw), oldCookie)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Empty(t, resp.Header.Values("Set-Cookie"))
		assert.Equal(t, 1, store.Stats().Active)

		store.fail.Store(false)
		resp, body = do(t, handler.Handler(counter, mw), oldCookie)
		assert.Equal(t, "2", body, "old session survives a failed rotation")
		assert.Empty(t, resp.Cookies())
	})

	t.Run("renew with cookie failure keeps the old session", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		codec := &toggleCookie{Codec: cookie.MustNew(testKey, cookie.Signed)}
		mw := middleware.ServerSession[ctx](store, codec)

		resp, _ := do(t, handler.Handler(counter, mw))
		oldCookie := sessionCookie(t, resp)

		codec.fail.Store(true)
		resp, _ = do(t, handler.Handler(func(c ctx) handler.Response {
			middleware.MustGetSession(c).Renew()
			return handler.Status(http.StatusOK)
		}, mw), oldCookie)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, 1, store.Stats().Active, "unissued id is not left behind")

		codec.fail.Store(false)
		_, body := do(t, handler.Handler(counter, mw), oldCookie)
		assert.Equal(t, "2", body)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		errStore := errors.New("store unavailable")
		codec := cookie.MustNew(testKey, cookie.Signed)
		var got error
		h := handler.Handler(counter, middleware.ServerSessionWithConfig(middleware.ServerSessionConfig[ctx]{
			Store:  failingStore{MemoryStore: session.NewMemoryStore(), err: errStore},
			Cookie: codec,
			ErrorHandler: func(c ctx, err error) handler.Response {
				got = err
				return handler.Status(http.StatusServiceUnavailable)
			},
		}))

		resp, _ := do(t, h)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.ErrorIs(t, got, errStore)
	})
}

// toggleStore fails every SetState while fail is set.
type toggleStore struct {
	*session.MemoryStore
	fail atomic.Bool
}

func (s *toggleStore) SetState(ctx context.Context, id string, state *session.State) error {
	if s.fail.Load() {
		return errors.New("store unavailable")
	}
	return s.MemoryStore.SetState(ctx, id, state)
}

// toggleCookie fails every SetCookie while fail is set.
type toggleCookie struct {
	*cookie.Codec
	fail atomic.Bool
}

func (c *toggleCookie) SetCookie(w http.ResponseWriter, id string) error {
	if c.fail.Load() {
		return &cookie.OverflowError{Name: cookie.DefaultName, Size: cookie.MaxValueSize + 1, Max: cookie.MaxValueSize}
	}
	return c.Codec.SetCookie(w, id)
}

type overflowCookie struct{}

func (overflowCookie) GetSessionID(*http.Request) (bool, string) {
	return true, cookie.GenerateID()
}

func (overflowCookie) SetCookie(http.ResponseWriter, string) error {
	return &cookie.OverflowError{Name: cookie.DefaultName, Size: cookie.MaxValueSize + 1, Max: cookie.MaxValueSize}
}

func (overflowCookie) RemoveCookie(http.ResponseWriter) {}

type failingStore struct {
	*session.MemoryStore
	err error
}

func (s failingStore) SetState(context.Context, string, *session.State) error {
	return s.err
}

func TestServerSession_Skip(t *testing.T) {
	t.Parallel()

	f := newFixture(t, cookie.Signed)
	h := handler.Handler(func(c ctx) handler.Response {
		_, ok := middleware.GetSession(c)
		assert.False(t, ok)
		return handler.Status(http.StatusOK)
	}, middleware.ServerSessionWithConfig(middleware.ServerSessionConfig[ctx]{
		Store:  f.store,
		Cookie: f.codec,
		Skip:   func(ctx) bool { return true },
	}))

	resp, _ := do(t, h)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
	assert.Equal(t, 0, f.store.Stats().Active)
}

func TestServerSession_Detach(t *testing.T) {
	t.Parallel()

	f := newFixture(t, cookie.Signed)
	h := f.handler(func(c ctx) handler.Response {
		require.NoError(t, middleware.MustGetSession(c).Set("k", "v"))
		middleware.DetachSession(c)
		return handler.Status(http.StatusOK)
	})

	resp, _ := do(t, h)
	assert.Empty(t, resp.Cookies())
	assert.Equal(t, 0, f.store.Stats().Active)
}

func TestServerSession_SharedHandle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, cookie.Signed)

	var fromMiddleware *session.Session
	inner := func(next handler.HandlerFunc[ctx]) handler.HandlerFunc[ctx] {
		return func(c ctx) handler.Response {
			fromMiddleware = middleware.MustGetSession(c)
			_ = fromMiddleware.Set("seen", true)
			return next(c)
		}
	}

	h := f.handler(func(c ctx) handler.Response {
		sess := middleware.MustGetSession(c)
		assert.Same(t, fromMiddleware, sess)

		var seen bool
		found, err := sess.Get("seen", &seen)
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, seen)
		return handler.Status(http.StatusOK)
	}, inner)

	resp, _ := do(t, h)
	id := idOf(t, f.codec, sessionCookie(t, resp))

	state, ok := f.store.GetState(context.Background(), id)
	require.True(t, ok)
	assert.Equal(t, []string{"seen"}, state.Keys())
}

func TestServerSession_Config(t *testing.T) {
	t.Parallel()

	codec := cookie.MustNew(testKey, cookie.Signed)

	assert.Panics(t, func() {
		middleware.ServerSession[ctx](nil, codec)
	})
	assert.Panics(t, func() {
		middleware.ServerSession[ctx](session.NewMemoryStore(), nil)
	})
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	c := handler.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	_, ok := middleware.GetSession(c)
	assert.False(t, ok)
	assert.Panics(t, func() { middleware.MustGetSession(c) })

	sess := session.Attach(nil)
	c.SetValue(struct{}{}, sess)
	_, ok = middleware.GetSession(c)
	assert.False(t, ok, "only the middleware key is consulted")
}
