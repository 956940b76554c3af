package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Gift Relay Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Scanner  ScannerConfig  `yaml:"scanner"`
	Actuator ActuatorConfig `yaml:"actuator"`
	Stream   StreamConfig   `yaml:"stream"`
	Weights  WeightsConfig  `yaml:"weights"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ScannerConfig contains network discovery settings.
type ScannerConfig struct {
	// Concurrency is the number of parallel probe workers.
	Concurrency int `yaml:"concurrency"`

	// ProbeTimeout is the per-host HTTP probe timeout in seconds.
	ProbeTimeout int `yaml:"probe_timeout"`

	// PlaceholderName is the device name shown for candidates that match
	// on status alone, with no recognisable identity in the response.
	PlaceholderName string `yaml:"placeholder_name"`

	// HandoffFile is where the selected device address is persisted for
	// the next run.
	HandoffFile string `yaml:"handoff_file"`
}

// ActuatorConfig contains relay controller delivery settings.
type ActuatorConfig struct {
	// SendTimeout is the command delivery timeout in seconds.
	SendTimeout int `yaml:"send_timeout"`
}

// StreamConfig contains upstream connection and retry policy settings.
type StreamConfig struct {
	// MaxRetries bounds consecutive reconnection attempts after
	// transient failures.
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the fixed wait between transient retries, in seconds.
	RetryDelay int `yaml:"retry_delay"`

	// RateLimitWait is the minimum wait after upstream throttling, in
	// seconds. The upstream hint is honoured when larger.
	RateLimitWait int `yaml:"rate_limit_wait"`
}

// WeightsConfig locates the gift weight table.
type WeightsConfig struct {
	Path string `yaml:"path"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP status API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GIFTRELAY_SECTION_KEY
// For example: GIFTRELAY_DATABASE_PATH, GIFTRELAY_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults. Callers that run
// without a config file use this directly.
func Default() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Concurrency:     50,
			ProbeTimeout:    2,
			PlaceholderName: "esp32-D9AEEC",
			HandoffFile:     "selected_device.tmp",
		},
		Actuator: ActuatorConfig{
			SendTimeout: 10,
		},
		Stream: StreamConfig{
			MaxRetries:    5,
			RetryDelay:    15,
			RateLimitWait: 21600,
		},
		Weights: WeightsConfig{
			Path: "configs/weights.yaml",
		},
		Database: DatabaseConfig{
			Path:        "./data/giftrelay.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "giftrelay-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GIFTRELAY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Scanner
	if v := os.Getenv("GIFTRELAY_SCANNER_HANDOFF_FILE"); v != "" {
		cfg.Scanner.HandoffFile = v
	}

	// Weights
	if v := os.Getenv("GIFTRELAY_WEIGHTS_PATH"); v != "" {
		cfg.Weights.Path = v
	}

	// Database
	if v := os.Getenv("GIFTRELAY_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("GIFTRELAY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GIFTRELAY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GIFTRELAY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("GIFTRELAY_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("GIFTRELAY_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("GIFTRELAY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Scanner validation
	if c.Scanner.Concurrency < 1 {
		errs = append(errs, "scanner.concurrency must be at least 1")
	}
	if c.Scanner.ProbeTimeout < 1 {
		errs = append(errs, "scanner.probe_timeout must be at least 1 second")
	}

	// Actuator validation
	if c.Actuator.SendTimeout < 1 {
		errs = append(errs, "actuator.send_timeout must be at least 1 second")
	}

	// Stream validation
	if c.Stream.MaxRetries < 1 {
		errs = append(errs, "stream.max_retries must be at least 1")
	}
	if c.Stream.RetryDelay < 1 {
		errs = append(errs, "stream.retry_delay must be at least 1 second")
	}

	// Weights validation
	if c.Weights.Path == "" {
		errs = append(errs, "weights.path is required")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set GIFTRELAY_INFLUXDB_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetProbeTimeout returns the scanner probe timeout as a Duration.
func (c *Config) GetProbeTimeout() time.Duration {
	return time.Duration(c.Scanner.ProbeTimeout) * time.Second
}

// GetSendTimeout returns the actuator delivery timeout as a Duration.
func (c *Config) GetSendTimeout() time.Duration {
	return time.Duration(c.Actuator.SendTimeout) * time.Second
}

// GetRetryDelay returns the transient retry delay as a Duration.
func (c *Config) GetRetryDelay() time.Duration {
	return time.Duration(c.Stream.RetryDelay) * time.Second
}

// GetRateLimitWait returns the minimum rate-limit wait as a Duration.
func (c *Config) GetRateLimitWait() time.Duration {
	return time.Duration(c.Stream.RateLimitWait) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
