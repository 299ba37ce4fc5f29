package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the main configuration for the A/V sync monitor
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Registry RegistryConfig `json:"registry"`
	Monitor  MonitorConfig  `json:"monitor"`
	Alerts   AlertConfig    `json:"alerts"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// DatabaseConfig contains database-related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// RegistryConfig contains site registry configuration
type RegistryConfig struct {
	SitesFile string `json:"sites_file"`
}

// MonitorConfig contains the polling and aggregation knobs
type MonitorConfig struct {
	Enabled        bool          `json:"enabled"`
	PollInterval   time.Duration `json:"poll_interval"`
	WarmupDelay    time.Duration `json:"warmup_delay"`
	Window         time.Duration `json:"window"`
	WarnThrottle   time.Duration `json:"warn_throttle"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// AlertConfig contains the outbound alert channel configuration.
// When Token or ChatID is empty, alert sends are silently skipped.
type AlertConfig struct {
	TelegramToken  string `json:"telegram_token"`
	TelegramChatID string `json:"telegram_chat_id"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("AVSYNC_PORT", 4000),
			Host: getEnvOrDefault("AVSYNC_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Path: getEnvOrDefault("AVSYNC_DB_PATH", "./avsync.db"),
		},
		Registry: RegistryConfig{
			SitesFile: getEnvOrDefault("AVSYNC_SITES_FILE", "./sites.yaml"),
		},
		Monitor: MonitorConfig{
			Enabled:        getEnvAsBool("AVSYNC_ENABLE_MONITOR", true),
			PollInterval:   getEnvAsMillis("AVSYNC_POLL_INTERVAL_MS", 5000),
			WarmupDelay:    getEnvAsMillis("AVSYNC_WARMUP_DELAY_MS", 3000),
			Window:         getEnvAsMillis("AVSYNC_WINDOW_MS", 60000),
			WarnThrottle:   getEnvAsMillis("AVSYNC_WARN_THROTTLE_MS", 300000),
			RequestTimeout: getEnvAsMillis("AVSYNC_REQUEST_TIMEOUT_MS", 4000),
		},
		Alerts: AlertConfig{
			TelegramToken:  getEnvOrDefault("AVSYNC_TELEGRAM_TOKEN", ""),
			TelegramChatID: getEnvOrDefault("AVSYNC_TELEGRAM_CHAT_ID", ""),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Monitor.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %s", c.Monitor.PollInterval)
	}

	if c.Monitor.Window <= 0 {
		return fmt.Errorf("rolling window must be positive: %s", c.Monitor.Window)
	}

	if c.Monitor.WarnThrottle < 0 {
		return fmt.Errorf("warn throttle must not be negative: %s", c.Monitor.WarnThrottle)
	}

	if c.Monitor.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive: %s", c.Monitor.RequestTimeout)
	}

	return nil
}

// AlertsConfigured reports whether the outbound alert channel is usable
func (c *Config) AlertsConfigured() bool {
	return c.Alerts.TelegramToken != "" && c.Alerts.TelegramChatID != ""
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}
