package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDiscogs(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDiscogs() error {
	if c.Discogs.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/runout/config.toml"
		}
		return fmt.Errorf("discogs.token is required. Set DISCOGS_TOKEN env var or edit %s (create with 'runout config init')", defaultPath)
	}
	if c.Discogs.BaseURL == "" {
		return errors.New("discogs.base_url must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.HighConfidence <= 0 || c.Matching.HighConfidence > 1 {
		return errors.New("matching.high_confidence must be in (0, 1]")
	}
	if c.Matching.InclusionThreshold <= 0 || c.Matching.InclusionThreshold > 1 {
		return errors.New("matching.inclusion_threshold must be in (0, 1]")
	}
	if c.Matching.InclusionThreshold > c.Matching.HighConfidence {
		return errors.New("matching.inclusion_threshold must not exceed matching.high_confidence")
	}
	if c.Matching.TieMargin < 0 || c.Matching.TieMargin >= 1 {
		return errors.New("matching.tie_margin must be in [0, 1)")
	}
	if c.Matching.MaxSuggestions < 1 {
		return errors.New("matching.max_suggestions must be at least 1")
	}
	return nil
}

func (c *Config) validateOCR() error {
	if c.OCR.DefaultConfidence <= 0 || c.OCR.DefaultConfidence > 1 {
		return errors.New("ocr.default_confidence must be in (0, 1]")
	}
	if c.OCR.UncertainThreshold <= 0 || c.OCR.UncertainThreshold > 1 {
		return errors.New("ocr.uncertain_threshold must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
