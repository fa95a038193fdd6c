package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"serialpcap/internal/logger"
	"serialpcap/internal/pcap"
)

// Config represents the application configuration
type Config struct {
	// Logging configuration
	Logging struct {
		// Level is the minimum log level to output (debug, info, warn, error)
		Level string `json:"level"`
		// File is the path to the log file. If empty, logs to stdout only
		File string `json:"file"`
		// MaxSizeMB is the maximum size of log file before rotation
		MaxSizeMB int `json:"max_size_mb"`
		// RetentionDays is how long rotated logs are kept
		RetentionDays int `json:"retention_days"`
	} `json:"logging"`

	// Capture configuration
	Capture struct {
		// SnapLen is the maximum payload size stored per record; longer
		// chunks are truncated
		SnapLen uint32 `json:"snaplen"`
		// FrameGapMS is the quiet interval in milliseconds that ends a chunk
		FrameGapMS int `json:"frame_gap_ms"`
		// Datalink is the link type name written to the file header
		Datalink string `json:"datalink"`
		// MaxChunkSize caps the bytes read into one chunk
		MaxChunkSize int `json:"max_chunk_size"`
		// FlushEveryRecords flushes the sink after this many records
		// (1 = every record, the durable default)
		FlushEveryRecords int `json:"flush_every_records"`
		// FlushIntervalMS additionally flushes at the next write once this
		// many milliseconds have passed (0 = disabled)
		FlushIntervalMS int `json:"flush_interval_ms"`
	} `json:"capture"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadConfig loads configuration from a JSON file and applies defaults for
// unset fields.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = 14
	}
	if c.Capture.SnapLen == 0 {
		c.Capture.SnapLen = 1024
	}
	if c.Capture.FrameGapMS == 0 {
		c.Capture.FrameGapMS = 10
	}
	if c.Capture.Datalink == "" {
		c.Capture.Datalink = "USER0"
	}
	if c.Capture.MaxChunkSize == 0 {
		c.Capture.MaxChunkSize = 1024
	}
	if c.Capture.FlushEveryRecords == 0 {
		c.Capture.FlushEveryRecords = 1
	}
}

// Validate rejects configurations that would produce a broken capture
// before any capture begins.
func (c *Config) Validate() error {
	if _, err := pcap.ParseLinkType(c.Capture.Datalink); err != nil {
		return fmt.Errorf("invalid datalink: %v", err)
	}
	if c.Capture.SnapLen == 0 {
		return fmt.Errorf("snaplen must be greater than zero")
	}
	if c.Capture.FrameGapMS < 0 {
		return fmt.Errorf("frame gap must not be negative")
	}
	if c.Capture.MaxChunkSize <= 0 {
		return fmt.Errorf("max chunk size must be greater than zero")
	}
	if c.Capture.MaxChunkSize > math.MaxInt32 {
		return fmt.Errorf("max chunk size too large: %d", c.Capture.MaxChunkSize)
	}
	if c.Capture.FlushEveryRecords < 0 {
		return fmt.Errorf("flush record count must not be negative")
	}
	if c.Capture.FlushIntervalMS < 0 {
		return fmt.Errorf("flush interval must not be negative")
	}
	if _, err := logger.ParseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %v", err)
	}
	return nil
}
