package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/grocer/pkg/config"
	"github.com/wonny/grocer/pkg/logger"
	"github.com/wonny/grocer/pkg/redis"
)

func testConfig(source string) *config.Config {
	return &config.Config{
		Signals: config.SignalConfig{
			Source:    source,
			RemoteURL: "http://localhost:9",
			RemoteRPS: 5,
		},
	}
}

func TestBuild(t *testing.T) {
	t.Run("mock", func(t *testing.T) {
		stack, err := Build(testConfig(config.SourceMock), Deps{Logger: logger.Nop()})
		require.NoError(t, err)
		assert.IsType(t, &MockProvider{}, stack.Provider)
		assert.NotNil(t, stack.Catalog)
		assert.Nil(t, stack.Cached)
	})

	t.Run("mock with breaker", func(t *testing.T) {
		cfg := testConfig(config.SourceMock)
		cfg.Signals.BreakerEnabled = true
		stack, err := Build(cfg, Deps{})
		require.NoError(t, err)
		assert.IsType(t, &BreakerProvider{}, stack.Provider)
	})

	t.Run("remote", func(t *testing.T) {
		stack, err := Build(testConfig(config.SourceRemote), Deps{})
		require.NoError(t, err)
		assert.IsType(t, &RemoteProvider{}, stack.Provider)
	})

	t.Run("postgres without db", func(t *testing.T) {
		_, err := Build(testConfig(config.SourcePostgres), Deps{})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Build(testConfig("carrier-pigeon"), Deps{})
		assert.Error(t, err)
	})

	t.Run("redis disabled skips cache", func(t *testing.T) {
		cfg := testConfig(config.SourceMock)
		cfg.Signals.CacheTTL = redis.TTLMedium
		stack, err := Build(cfg, Deps{Redis: redis.Disabled()})
		require.NoError(t, err)
		assert.Nil(t, stack.Cached)
	})
}
