package cookie_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/core/cookie"
)

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("builds codec from config", func(t *testing.T) {
		t.Parallel()

		cfg := cookie.DefaultConfig()
		cfg.SecretKey = string(testKey)
		cfg.Security = "private"
		cfg.Name = "app-session"
		cfg.SameSite = http.SameSiteLaxMode
		cfg.MaxAge = 10 * time.Minute

		c, err := cookie.NewFromConfig(cfg)
		require.NoError(t, err)
		assert.Equal(t, cookie.Private, c.Security())
		assert.Equal(t, "app-session", c.Name())

		ck := issue(t, c, cookie.GenerateID())
		assert.Equal(t, 600, ck.MaxAge)
		assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
		assert.True(t, ck.HttpOnly)
	})

	t.Run("options override config", func(t *testing.T) {
		t.Parallel()

		cfg := cookie.DefaultConfig()
		cfg.SecretKey = string(testKey)

		c, err := cookie.NewFromConfig(cfg, cookie.WithName("override"))
		require.NoError(t, err)
		assert.Equal(t, "override", c.Name())
	})

	t.Run("short key is fatal", func(t *testing.T) {
		t.Parallel()

		cfg := cookie.DefaultConfig()
		cfg.SecretKey = "short"

		_, err := cookie.NewFromConfig(cfg)
		assert.ErrorIs(t, err, cookie.ErrKeyTooShort)
	})

	t.Run("unknown security", func(t *testing.T) {
		t.Parallel()

		cfg := cookie.DefaultConfig()
		cfg.SecretKey = string(testKey)
		cfg.Security = "plain"

		_, err := cookie.NewFromConfig(cfg)
		assert.ErrorIs(t, err, cookie.ErrUnknownSecurity)
	})
}
