package testsupport

import (
	"path/filepath"
	"testing"

	"runout/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Discogs.Token = "test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithDiscogsToken sets the Discogs token on the test config.
func WithDiscogsToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Discogs.Token = token
	}
}

// WithMatching overrides the matching thresholds on the test config.
func WithMatching(matching config.Matching) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching = matching
	}
}
