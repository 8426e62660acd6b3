package providers

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/yamdb-server/internal/config"
	"github.com/yamdb/yamdb-server/internal/mail"
	"github.com/yamdb/yamdb-server/internal/service"
)

func testInjector(t *testing.T, cfg *config.Config) *do.RootScope {
	t.Helper()
	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, slog.New(slog.NewTextHandler(io.Discard, nil)))
	do.Provide(injector, ProvideAuthKey)
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideTokenService)
	do.Provide(injector, ProvidePolicy)
	do.Provide(injector, ProvideValidator)
	do.Provide(injector, ProvideAuthRateLimiter)
	do.Provide(injector, ProvideMailSender)
	do.Provide(injector, ProvideMailer)
	do.Provide(injector, ProvideAuthService)
	do.Provide(injector, ProvideUserService)
	do.Provide(injector, ProvideCatalogService)
	do.Provide(injector, ProvideTitleService)
	do.Provide(injector, ProvideContentService)
	do.Provide(injector, ProvideAPIServer)
	t.Cleanup(func() { _ = injector.Shutdown() })
	return injector
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load([]string{
		"--data-dir", dir,
		"--db", filepath.Join(dir, "nested", "yamdb.db"),
		"--mail-backend", "memory",
		"--env-file", filepath.Join(dir, "missing.env"),
	})
	require.NoError(t, err)
	return cfg
}

func TestProviders_WireAPIServer(t *testing.T) {
	injector := testInjector(t, testConfig(t))

	_, err := do.Invoke[*service.TitleService](injector)
	require.NoError(t, err)

	_, err = do.Invoke[*StoreHandle](injector)
	require.NoError(t, err)

	sender, err := do.Invoke[mail.Sender](injector)
	require.NoError(t, err)
	assert.Equal(t, mail.BackendMemory, sender.Name())

	limiter, err := do.Invoke[*AuthRateLimiterHandle](injector)
	require.NoError(t, err)
	assert.NotNil(t, limiter.KeyedRateLimiter)
}

func TestProvideAuthKey_Persists(t *testing.T) {
	cfg := testConfig(t)

	first, err := do.Invoke[AuthKey](testInjector(t, cfg))
	require.NoError(t, err)
	second, err := do.Invoke[AuthKey](testInjector(t, cfg))
	require.NoError(t, err)

	assert.Len(t, first, 32)
	assert.Equal(t, first, second)
}

func TestProvideMailSender_Backends(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mail.Backend = mail.BackendConsole
	sender, err := do.Invoke[mail.Sender](testInjector(t, cfg))
	require.NoError(t, err)
	assert.Equal(t, mail.BackendConsole, sender.Name())

	cfg.Mail.Backend = "pigeon"
	_, err = do.Invoke[mail.Sender](testInjector(t, cfg))
	assert.Error(t, err)
}
