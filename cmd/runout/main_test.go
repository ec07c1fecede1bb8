package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeCLIConfig writes a minimal config pointing at per-test directories and
// returns its path.
func writeCLIConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[discogs]
token = "test"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootHelpListsLifecycleCommands(t *testing.T) {
	stdout, _, err := runCLI(t, "", "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"new", "search", "select", "reject", "verify", "show", "list", "price", "config"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("help output missing %q", name)
		}
	}
}

func TestNewAndListRoundTrip(t *testing.T) {
	configPath := writeCLIConfig(t)

	stdout, _, err := runCLI(t, configPath, "new", "vinyl")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !strings.Contains(stdout, "Started vinyl scan") {
		t.Fatalf("unexpected output %q", stdout)
	}

	stdout, _, err = runCLI(t, configPath, "list", "--status", "pending")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout, "pending") {
		t.Fatalf("list output missing pending scan: %q", stdout)
	}
}

func TestNewRejectsUnknownMediaType(t *testing.T) {
	configPath := writeCLIConfig(t)

	if _, _, err := runCLI(t, configPath, "new", "cassette"); err == nil {
		t.Fatal("expected error for unknown media type")
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	configPath := writeCLIConfig(t)

	if _, _, err := runCLI(t, configPath, "list", "--status", "bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseFix(t *testing.T) {
	position, character, err := parseFix("4=S")
	if err != nil {
		t.Fatalf("parseFix: %v", err)
	}
	if position != 4 || character != 'S' {
		t.Fatalf("parseFix = %d, %q", position, character)
	}

	for _, bad := range []string{"", "4", "x=S", "4=", "4=SS"} {
		if _, _, err := parseFix(bad); err == nil {
			t.Errorf("parseFix(%q) accepted invalid input", bad)
		}
	}
}
