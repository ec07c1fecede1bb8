package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Matching.HighConfidence != defaultHighConfidence {
		t.Fatalf("high confidence default = %v", cfg.Matching.HighConfidence)
	}
	if cfg.OCR.DefaultConfidence != defaultOCRConfidence {
		t.Fatalf("ocr default = %v", cfg.OCR.DefaultConfidence)
	}
	if cfg.Discogs.BaseURL != defaultDiscogsBaseURL {
		t.Fatalf("base url default = %q", cfg.Discogs.BaseURL)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[matching]
high_confidence = 0.9
inclusion_threshold = 0.5

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Matching.HighConfidence != 0.9 {
		t.Fatalf("high confidence = %v", cfg.Matching.HighConfidence)
	}
	if cfg.Matching.TieMargin != defaultTieMargin {
		t.Fatalf("tie margin should default, got %v", cfg.Matching.TieMargin)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("logging format = %q", cfg.Logging.Format)
	}
}

func TestNormalizeReadsTokenFromEnv(t *testing.T) {
	t.Setenv("DISCOGS_TOKEN", "env-token")
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Discogs.Token != "env-token" {
		t.Fatalf("token = %q", cfg.Discogs.Token)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := Default()
	cfg.Discogs.Token = "token"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Matching.InclusionThreshold = 0.95
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when inclusion threshold exceeds high confidence")
	}

	cfg = Default()
	cfg.Discogs.Token = "token"
	cfg.Matching.TieMargin = -0.1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative tie margin")
	}

	cfg = Default()
	cfg.Discogs.Token = "token"
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestValidateRequiresToken(t *testing.T) {
	cfg := Default()
	cfg.Discogs.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	if !strings.Contains(err.Error(), "discogs.token") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[matching]") {
		t.Fatal("sample missing matching section")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := ExpandPath("~/scans")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "scans") {
		t.Fatalf("ExpandPath = %q", got)
	}
}
