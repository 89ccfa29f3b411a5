package clienttracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 300*time.Second, cfg.EventTTL)
	require.Equal(t, 300*time.Second, cfg.SessionTTL)
	require.Equal(t, 60*time.Second, cfg.UserTTL)
	require.Equal(t, 0, cfg.PurgeRetries)
}

func TestApplyDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		ApplyDefaults(&cfg)

		require.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			EventTTL:     10 * time.Minute,
			SessionTTL:   5 * time.Minute,
			UserTTL:      30 * time.Second,
			PurgeRetries: 2,
		}
		ApplyDefaults(&cfg)

		require.Equal(t, 10*time.Minute, cfg.EventTTL)
		require.Equal(t, 5*time.Minute, cfg.SessionTTL)
		require.Equal(t, 30*time.Second, cfg.UserTTL)
		require.Equal(t, 2, cfg.PurgeRetries)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("accepts defaults", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects zero ttls", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.UserTTL = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects session ttl above event ttl", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EventTTL = 100 * time.Second
		cfg.SessionTTL = 101 * time.Second
		cfg.UserTTL = 10 * time.Second

		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "SessionTTL")
	})

	t.Run("rejects user ttl above session ttl", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.UserTTL = cfg.SessionTTL + time.Second

		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "UserTTL")
	})

	t.Run("accepts equal ttls", func(t *testing.T) {
		cfg := Config{
			EventTTL:   time.Minute,
			SessionTTL: time.Minute,
			UserTTL:    time.Minute,
		}
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects negative purge retries", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PurgeRetries = -1
		require.Error(t, cfg.Validate())
	})
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.NoError(t, cfg.Validate())
	require.Less(t, cfg.EventTTL, DefaultConfig().EventTTL)
	require.LessOrEqual(t, cfg.UserTTL, cfg.SessionTTL)
	require.LessOrEqual(t, cfg.SessionTTL, cfg.EventTTL)
}

func TestConfigYAML(t *testing.T) {
	raw := `
eventTtl: 5m
sessionTtl: 2m
userTtl: 45s
purgeRetries: 3
`

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))

	require.Equal(t, 5*time.Minute, cfg.EventTTL)
	require.Equal(t, 2*time.Minute, cfg.SessionTTL)
	require.Equal(t, 45*time.Second, cfg.UserTTL)
	require.Equal(t, 3, cfg.PurgeRetries)
	require.NoError(t, cfg.Validate())
}
