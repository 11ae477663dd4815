package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"socialhub/infrastructure/cache"
	"socialhub/infrastructure/config"
	"socialhub/infrastructure/messaging"
	"socialhub/pkg/auth"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitializeContainer_Memory(t *testing.T) {
	cfg := config.Defaults()
	cfg.EnableTracing = false

	ctx := context.Background()
	c, cleanup, err := InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Outbox)
	assert.Nil(t, c.Subscriber)
	assert.Nil(t, c.Watcher)
	assert.IsType(t, &messaging.LogPublisher{}, c.Publisher)
	assert.IsType(t, &cache.InMemoryCache{}, c.Cache)

	c.Start(ctx)

	srv := httptest.NewServer(c.Router.Setup())
	defer srv.Close()

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	assert.NoError(t, c.Shutdown(shutdownCtx))
}

func TestProvideStorage_UnknownBackend(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage = "cassandra"

	_, err := ProvideStorage(cfg, aws.Config{}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideOutbox_MemoryStorageStaysInProcess(t *testing.T) {
	cfg := config.Defaults()
	assert.Nil(t, ProvideOutbox(cfg, aws.Config{}, zap.NewNop()))
}

func TestProvideRateLimiter_FallsBackToSlidingWindow(t *testing.T) {
	limiter := ProvideRateLimiter(config.Defaults(), nil)
	assert.IsType(t, &auth.SlidingWindowLimiter{}, limiter)
}

func TestProvideJWTValidator_DevelopmentSecret(t *testing.T) {
	cfg := config.Defaults()
	cfg.JWTSecret = ""

	validator, err := ProvideJWTValidator(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, validator)
}

func TestProvideWatcher_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socialhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dynamic:\n  max_page_size: 20\n"), 0o600))

	cfg := config.Defaults()
	cfg.File = path

	w, stop, err := ProvideWatcher(cfg, ProvideDynamicConfig(cfg), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, w)
	stop()
}
