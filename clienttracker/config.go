package clienttracker

import (
	"fmt"
	"time"
)

// Config is the configuration for the Tracker.
//
// All duration fields accept standard Go duration strings like "30s", "5m"
// when unmarshaled from YAML.
//
// TTL hierarchy: a user's heartbeat record is the finest-grained piece of
// liveness evidence, so it must expire no later than the session and event
// records it feeds. Validate enforces UserTTL <= SessionTTL <= EventTTL;
// without it an event or session could linger as "active" long after every
// user heartbeat justifying it has expired, because the event and session
// indices are refreshed independently of the user index.
type Config struct {
	// EventTTL is how long an event remains active after its last heartbeat.
	// Recommended: 300 seconds.
	EventTTL time.Duration `yaml:"eventTtl"`

	// SessionTTL is how long a session remains active after its last heartbeat.
	// Must not exceed EventTTL.
	// Recommended: 300 seconds.
	SessionTTL time.Duration `yaml:"sessionTtl"`

	// UserTTL is how long a user's participation in an (event, session) pair
	// remains active after their last heartbeat. Must not exceed SessionTTL.
	// Recommended: 60 seconds.
	UserTTL time.Duration `yaml:"userTtl"`

	// PurgeRetries is how many times an aborted optimistic purge transaction
	// is retried before the purge round is skipped. Zero preserves the
	// original skip-on-conflict behavior; the next read re-triggers the
	// purge, so TTL enforcement stays best-effort either way.
	PurgeRetries int `yaml:"purgeRetries"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		EventTTL:     300 * time.Second,
		SessionTTL:   300 * time.Second,
		UserTTL:      60 * time.Second,
		PurgeRetries: 0,
	}
}

// ApplyDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func ApplyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.EventTTL == 0 {
		cfg.EventTTL = defaults.EventTTL
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = defaults.SessionTTL
	}
	if cfg.UserTTL == 0 {
		cfg.UserTTL = defaults.UserTTL
	}
	// Note: PurgeRetries of 0 is valid (no retries), so we don't apply a default
}

// Validate checks configuration constraints and returns an error for invalid values.
//
// Hard Validation Rules:
//   - All TTLs > 0
//   - SessionTTL <= EventTTL (a session must not outlive its event)
//   - UserTTL <= SessionTTL (a user record must not outlive its session)
//   - PurgeRetries >= 0
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.EventTTL <= 0 || cfg.SessionTTL <= 0 || cfg.UserTTL <= 0 {
		return fmt.Errorf(
			"all TTLs must be > 0, got event=%v session=%v user=%v",
			cfg.EventTTL, cfg.SessionTTL, cfg.UserTTL,
		)
	}

	if cfg.SessionTTL > cfg.EventTTL {
		return fmt.Errorf(
			"SessionTTL (%v) must be <= EventTTL (%v)",
			cfg.SessionTTL, cfg.EventTTL,
		)
	}

	if cfg.UserTTL > cfg.SessionTTL {
		return fmt.Errorf(
			"UserTTL (%v) must be <= SessionTTL (%v)",
			cfg.UserTTL, cfg.SessionTTL,
		)
	}

	if cfg.PurgeRetries < 0 {
		return fmt.Errorf("PurgeRetries must be >= 0, got %d", cfg.PurgeRetries)
	}

	return nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// TTLs are far shorter than production defaults so expiry scenarios can be
// exercised without long waits. Use DefaultConfig() for production.
//
// Returns:
//   - Config: Configuration with fast timings for tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.EventTTL = 5 * time.Second
	cfg.SessionTTL = 3 * time.Second
	cfg.UserTTL = 1 * time.Second

	return cfg
}
