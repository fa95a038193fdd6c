package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Capture.SnapLen != 1024 {
		t.Errorf("default snaplen = %d, want 1024", cfg.Capture.SnapLen)
	}
	if cfg.Capture.Datalink != "USER0" {
		t.Errorf("default datalink = %q, want USER0", cfg.Capture.Datalink)
	}
	if cfg.Capture.FlushEveryRecords != 1 {
		t.Errorf("default flush policy = %d records, want 1 (durable)", cfg.Capture.FlushEveryRecords)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"capture": {"snaplen": 4096}}`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Capture.SnapLen != 4096 {
		t.Errorf("snaplen = %d, want 4096", cfg.Capture.SnapLen)
	}
	if cfg.Capture.FrameGapMS != 10 {
		t.Errorf("frame gap default = %d, want 10", cfg.Capture.FrameGapMS)
	}
	if cfg.Logging.MaxSizeMB != 100 {
		t.Errorf("log max size default = %d, want 100", cfg.Logging.MaxSizeMB)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"batched flush valid", func(c *Config) {
			c.Capture.FlushEveryRecords = 64
			c.Capture.FlushIntervalMS = 200
		}, ""},
		{"unknown datalink", func(c *Config) { c.Capture.Datalink = "NOPE" }, "invalid datalink"},
		{"zero snaplen", func(c *Config) { c.Capture.SnapLen = 0 }, "snaplen"},
		{"negative frame gap", func(c *Config) { c.Capture.FrameGapMS = -1 }, "frame gap"},
		{"zero chunk size", func(c *Config) { c.Capture.MaxChunkSize = 0 }, "chunk size"},
		{"negative flush count", func(c *Config) { c.Capture.FlushEveryRecords = -1 }, "flush record count"},
		{"negative flush interval", func(c *Config) { c.Capture.FlushIntervalMS = -5 }, "flush interval"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errorMsg)
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errorMsg)
			}
		})
	}
}
