package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"EnigmaNetz/Enigma-Go-Collector/internal/logger"
)

// DefaultPath is where the collector looks for its process configuration
const DefaultPath = "/etc/dsc/collector.json"

// DefaultConfFile is the directive file parsed at startup
const DefaultConfFile = "/etc/dsc/dsc.conf"

// Config represents the process configuration that surrounds the
// directive file: logging, capture defaults and the array service.
type Config struct {
	// Logging configuration
	Logging struct {
		// Debug is the diagnostic verbosity; above zero logs go to stderr
		Debug int `json:"debug"`
		// File is the path to a rotated log file. If empty, the system logger is used
		File string `json:"file"`
		// MaxSizeMB is the maximum size of log file before rotation
		MaxSizeMB int `json:"max_size_mb"`
		// RetentionDays is how long rotated log files are kept
		RetentionDays int `json:"retention_days"`
		// Tag identifies the collector in the system logger
		Tag string `json:"tag"`
	} `json:"logging"`

	// Collector configuration
	Collector struct {
		// ConfFile is the directive file to load
		ConfFile string `json:"conf_file"`
		// Promiscuous opens capture interfaces in promiscuous mode
		Promiscuous bool `json:"promiscuous"`
		// SnapLen is the number of bytes captured per packet
		SnapLen int `json:"snap_len"`
		// ArrayService is the gRPC address of a remote array service. If
		// empty, arrays are only built locally.
		ArrayService string `json:"array_service"`
		// ArrayServiceInsecure disables TLS for the array service
		ArrayServiceInsecure bool `json:"array_service_insecure"`
	} `json:"collector"`
}

// LoadConfig loads configuration from a JSON file. A missing file at the
// default path is not an error; defaults are returned instead.
func LoadConfig(configPath string) (*Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath
	}

	var config Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.setDefaults()
	return &config, nil
}

func (c *Config) setDefaults() {
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 100 // 100MB default
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = 7
	}
	if c.Logging.Tag == "" {
		c.Logging.Tag = "dsc"
	}
	if c.Collector.ConfFile == "" {
		c.Collector.ConfFile = DefaultConfFile
	}
	if c.Collector.SnapLen == 0 {
		c.Collector.SnapLen = 65535
	}
}

// InitializeLogging builds the logging facade described by the config
func (c *Config) InitializeLogging() (*logger.Logger, error) {
	if c.Logging.File != "" {
		logDir := filepath.Dir(c.Logging.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	l, err := logger.NewLogger(logger.Config{
		Debug:   c.Logging.Debug,
		Tag:     c.Logging.Tag,
		LogFile: c.Logging.File,
		MaxSize: c.Logging.MaxSizeMB,
		MaxAge:  c.Logging.RetentionDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}
