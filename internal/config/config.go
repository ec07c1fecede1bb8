package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Discogs contains configuration for the catalog search and pricing API.
type Discogs struct {
	Token     string `toml:"token"`
	BaseURL   string `toml:"base_url"`
	Currency  string `toml:"currency"`
	UserAgent string `toml:"user_agent"`
}

// Matching contains thresholds for candidate ranking and classification.
type Matching struct {
	// HighConfidence is the score a lone candidate must reach to be
	// classified as a single match. Default: 0.85
	HighConfidence float64 `toml:"high_confidence"`
	// InclusionThreshold is the minimum score for a candidate to appear in
	// suggestions. The boundary is inclusive. Default: 0.4
	InclusionThreshold float64 `toml:"inclusion_threshold"`
	// TieMargin is the score gap below which two candidates are considered
	// tied, forcing a multiple-candidates outcome. Default: 0.05
	TieMargin float64 `toml:"tie_margin"`
	// MaxSuggestions caps the suggestion list. Default: 5
	MaxSuggestions int `toml:"max_suggestions"`
}

// OCR contains thresholds for the character verification flow.
type OCR struct {
	// DefaultConfidence is assigned to characters when the recognizer
	// supplies no per-character confidences. Default: 0.85
	DefaultConfidence float64 `toml:"default_confidence"`
	// UncertainThreshold marks characters below it as needing review.
	// Default: 0.9
	UncertainThreshold float64 `toml:"uncertain_threshold"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for runout.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Discogs: catalog search and pricing API access
//   - Matching: ranking thresholds and suggestion limits
//   - OCR: character confidence defaults for verification sessions
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Discogs  Discogs  `toml:"discogs"`
	Matching Matching `toml:"matching"`
	OCR      OCR      `toml:"ocr"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/runout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		path = expanded
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", path)
		}
		return path, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return path, false, nil
	default:
		return "", false, fmt.Errorf("stat config: %w", err)
	}
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = defaultPath
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return err
		}
		path = expanded
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories the application needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath expands a leading ~ to the user home directory and returns an
// absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, path[2:])
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
