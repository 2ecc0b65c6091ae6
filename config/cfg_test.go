package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Capture.PollIntervalMS < 50 {
		t.Errorf("Default poll interval = %d, below validated minimum", cfg.Capture.PollIntervalMS)
	}
	if cfg.Session.Path == "" {
		t.Error("Default session path is empty")
	}
	if cfg.Export.NameTemplate == "" {
		t.Error("Default export name template is empty")
	}
	// name_template is excluded from expansion and must survive verbatim
	if !strings.Contains(cfg.Export.NameTemplate, "{{") {
		t.Errorf("Export name template was expanded: %q", cfg.Export.NameTemplate)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
capture:
  poll_interval_ms: 500
  keep_duplicates: true
session:
  path: ` + filepath.ToSlash(filepath.Join(tmpDir, "session.json")) + `
  backups:
    keep: 5
history:
  enable: false
  path: ` + filepath.ToSlash(filepath.Join(tmpDir, "history.db")) + `
  max_entries: 50
logging:
  console:
    level: none
  file:
    level: debug
    destination: ` + filepath.ToSlash(filepath.Join(tmpDir, "test.log")) + `
    mode: append
reporting:
  destination: ` + filepath.ToSlash(filepath.Join(tmpDir, "report.zip")) + `
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Capture.PollIntervalMS != 500 {
		t.Errorf("PollIntervalMS = %d, want 500", cfg.Capture.PollIntervalMS)
	}
	if !cfg.Capture.KeepDuplicates {
		t.Error("Expected KeepDuplicates to be true")
	}
	if cfg.Session.Backups.Keep != 5 {
		t.Errorf("Backups.Keep = %d, want 5", cfg.Session.Backups.Keep)
	}
	if cfg.History.Enable {
		t.Error("Expected History.Enable to be false")
	}
	if cfg.History.MaxEntries != 50 {
		t.Errorf("History.MaxEntries = %d, want 50", cfg.History.MaxEntries)
	}
	// values absent from the file keep template defaults
	if cfg.Capture.MaxPayloadBytes < 1024 {
		t.Errorf("MaxPayloadBytes default lost: %d", cfg.Capture.MaxPayloadBytes)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `version: 1
capture:
  poll_interval_ms: 500
  invalid indent
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configContent := `version: 1
capture:
  poll_interval_ms: 500
  no_such_option: true
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("Expected error for unknown configuration fields")
	}
}

func TestLoadConfiguration_ValidationFailure(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")

	// poll interval below validated minimum
	configContent := `version: 1
capture:
  poll_interval_ms: 5
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfiguration(configPath); err == nil {
		t.Error("Expected validation error for out of range poll interval")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty configuration")
	}
	for _, section := range []string{"capture:", "session:", "history:", "export:", "logging:", "reporting:"} {
		if !strings.Contains(string(data), section) {
			t.Errorf("Prepared configuration is missing section %q", section)
		}
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "version: 1") {
		t.Errorf("Dump() output missing version: %s", data)
	}
}
