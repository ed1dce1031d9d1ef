// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeTestConfig(t, `
server:
  listen_addr: "0.0.0.0:8000"

database:
  path: "./test.db"

ai:
  api_key: "sk-test"
  assistant_id: "asst_test"
  echo_delay: "2s"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != "0.0.0.0:8000" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, "0.0.0.0:8000")
	}

	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}

	if cfg.AI.APIKey != "sk-test" {
		t.Errorf("AI.APIKey = %q, want %q", cfg.AI.APIKey, "sk-test")
	}
	if cfg.AI.AssistantID != "asst_test" {
		t.Errorf("AI.AssistantID = %q, want %q", cfg.AI.AssistantID, "asst_test")
	}
	if cfg.AI.EchoDelay != 2*time.Second {
		t.Errorf("AI.EchoDelay = %v, want %v", cfg.AI.EchoDelay, 2*time.Second)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-from-env")
	t.Setenv("TEST_ASSISTANT_ID", "asst-from-env")

	configPath := writeTestConfig(t, `
server:
  listen_addr: "0.0.0.0:8000"

database:
  path: "./test.db"

ai:
  api_key: "${TEST_OPENAI_KEY}"
  assistant_id: "${TEST_ASSISTANT_ID}"

logging:
  level: "info"
  format: "text"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AI.APIKey != "sk-from-env" {
		t.Errorf("AI.APIKey = %q, want %q", cfg.AI.APIKey, "sk-from-env")
	}
	if cfg.AI.AssistantID != "asst-from-env" {
		t.Errorf("AI.AssistantID = %q, want %q", cfg.AI.AssistantID, "asst-from-env")
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	// Ensure the env var is NOT set
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	configPath := writeTestConfig(t, `
server:
  listen_addr: "0.0.0.0:8000"

database:
  path: "./test.db"

ai:
  api_key: "${UNSET_VAR_FOR_TEST}"
  assistant_id: "asst_test"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Unset env vars should expand to empty string
	if cfg.AI.APIKey != "" {
		t.Errorf("AI.APIKey = %q, want empty string for unset env var", cfg.AI.APIKey)
	}

	// Which also means the assistant is not considered configured
	if cfg.AI.Configured() {
		t.Error("AI.Configured() = true, want false with empty api_key")
	}
}

func TestLoad_EchoDelayDefault(t *testing.T) {
	configPath := writeTestConfig(t, `
server:
  listen_addr: "0.0.0.0:8000"

database:
  path: "./test.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AI.EchoDelay != 4*time.Second {
		t.Errorf("AI.EchoDelay = %v, want default %v", cfg.AI.EchoDelay, 4*time.Second)
	}
}

func TestLoad_DurationParsing(t *testing.T) {
	configPath := writeTestConfig(t, `
server:
  listen_addr: "0.0.0.0:8000"

database:
  path: "./test.db"

ai:
  echo_delay: "1m30s"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := 1*time.Minute + 30*time.Second
	if cfg.AI.EchoDelay != expected {
		t.Errorf("AI.EchoDelay = %v, want %v", cfg.AI.EchoDelay, expected)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeTestConfig(t, `
server:
  listen_addr "missing colon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeTestConfig(t, `
server:
  listen_addr: "0.0.0.0:8000"

database:
  path: "./test.db"

ai:
  echo_delay: "invalid-duration"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid duration, got nil")
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		wantErrSubstr string
	}{
		{
			name: "missing listen_addr",
			configContent: `
server:
  listen_addr: ""
database:
  path: "./test.db"
`,
			wantErrSubstr: "server.listen_addr is required",
		},
		{
			name: "missing database path",
			configContent: `
server:
  listen_addr: "0.0.0.0:8000"
database:
  path: ""
`,
			wantErrSubstr: "database.path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeTestConfig(t, tt.configContent)

			_, err := Load(configPath)
			if err == nil {
				t.Errorf("Load() expected error containing %q, got nil", tt.wantErrSubstr)
				return
			}

			if !strings.Contains(err.Error(), tt.wantErrSubstr) {
				t.Errorf("Load() error = %q, want error containing %q", err.Error(), tt.wantErrSubstr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("BAZ", "qux")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single env var",
			input:    "${FOO}",
			expected: "bar",
		},
		{
			name:     "env var with surrounding text",
			input:    "prefix-${FOO}-suffix",
			expected: "prefix-bar-suffix",
		},
		{
			name:     "multiple env vars",
			input:    "${FOO}/${BAZ}",
			expected: "bar/qux",
		},
		{
			name:     "no env vars",
			input:    "no-vars-here",
			expected: "no-vars-here",
		},
		{
			name:     "unset env var",
			input:    "${UNSET_VAR}",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestAIConfig_Configured(t *testing.T) {
	tests := []struct {
		name     string
		cfg      AIConfig
		expected bool
	}{
		{
			name:     "both set",
			cfg:      AIConfig{APIKey: "sk-test", AssistantID: "asst_test"},
			expected: true,
		},
		{
			name:     "missing api key",
			cfg:      AIConfig{AssistantID: "asst_test"},
			expected: false,
		},
		{
			name:     "missing assistant id",
			cfg:      AIConfig{APIKey: "sk-test"},
			expected: false,
		},
		{
			name:     "neither set",
			cfg:      AIConfig{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Configured(); got != tt.expected {
				t.Errorf("Configured() = %v, want %v", got, tt.expected)
			}
		})
	}
}
