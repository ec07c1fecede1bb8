package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDiscogs()
	c.normalizeMatching()
	c.normalizeOCR()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDiscogs() {
	if c.Discogs.Token == "" {
		if value, ok := os.LookupEnv("DISCOGS_TOKEN"); ok {
			c.Discogs.Token = value
		}
	}
	c.Discogs.BaseURL = strings.TrimSpace(c.Discogs.BaseURL)
	if c.Discogs.BaseURL == "" {
		c.Discogs.BaseURL = defaultDiscogsBaseURL
	}
	c.Discogs.Currency = strings.ToUpper(strings.TrimSpace(c.Discogs.Currency))
	if c.Discogs.Currency == "" {
		c.Discogs.Currency = defaultDiscogsCurrency
	}
	c.Discogs.UserAgent = strings.TrimSpace(c.Discogs.UserAgent)
	if c.Discogs.UserAgent == "" {
		c.Discogs.UserAgent = defaultDiscogsUserAgent
	}
}

func (c *Config) normalizeMatching() {
	if c.Matching.HighConfidence == 0 {
		c.Matching.HighConfidence = defaultHighConfidence
	}
	if c.Matching.InclusionThreshold == 0 {
		c.Matching.InclusionThreshold = defaultInclusionThreshold
	}
	if c.Matching.TieMargin == 0 {
		c.Matching.TieMargin = defaultTieMargin
	}
	if c.Matching.MaxSuggestions == 0 {
		c.Matching.MaxSuggestions = defaultMaxSuggestions
	}
}

func (c *Config) normalizeOCR() {
	if c.OCR.DefaultConfidence == 0 {
		c.OCR.DefaultConfidence = defaultOCRConfidence
	}
	if c.OCR.UncertainThreshold == 0 {
		c.OCR.UncertainThreshold = defaultUncertainThreshold
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
