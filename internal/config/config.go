// ABOUTME: Configuration loading and parsing for switchboard
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultEchoDelay is how long the echo responder waits before replying
// when no value is configured.
const defaultEchoDelay = 4 * time.Second

// Config represents the complete switchboard configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AIConfig holds assistant provider credentials and responder timing
type AIConfig struct {
	APIKey      string `yaml:"api_key"`
	AssistantID string `yaml:"assistant_id"`

	EchoDelay time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	EchoDelayRaw string `yaml:"echo_delay"`
}

// Configured reports whether both credentials needed for assistant
// replies are present. When either is missing the gateway falls back
// to the echo responder.
func (c AIConfig) Configured() bool {
	return c.APIKey != "" && c.AssistantID != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.AI.EchoDelayRaw == "" {
		cfg.AI.EchoDelay = defaultEchoDelay
		return nil
	}

	delay, err := time.ParseDuration(cfg.AI.EchoDelayRaw)
	if err != nil {
		return fmt.Errorf("parsing echo_delay %q: %w", cfg.AI.EchoDelayRaw, err)
	}
	cfg.AI.EchoDelay = delay

	return nil
}
