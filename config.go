package forgeterm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds process-wide settings loaded from the environment.
type Config struct {
	// Server
	ListenAddr  string
	MaxSessions int

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Execution
	AllowRealExecution bool
	ExecTimeoutMs      int
	MaxOutputLength    int
	AllowedCommands    []string
}

// LoadConfig reads configuration from FORGETERM_* environment variables with defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ListenAddr:         envOr("FORGETERM_LISTEN_ADDR", ":3001"),
		MaxSessions:        envInt("FORGETERM_MAX_SESSIONS", 100),
		LogLevel:           envOr("FORGETERM_LOG_LEVEL", "info"),
		LogFormat:          envOr("FORGETERM_LOG_FORMAT", "json"),
		LogFile:            envOr("FORGETERM_LOG_FILE", ""),
		AllowRealExecution: envBool("FORGETERM_ALLOW_REAL_EXECUTION", false),
		ExecTimeoutMs:      envInt("FORGETERM_EXEC_TIMEOUT_MS", 30000),
		MaxOutputLength:    envInt("FORGETERM_MAX_OUTPUT_LENGTH", 10000),
		AllowedCommands:    envList("FORGETERM_ALLOWED_COMMANDS"),
	}

	if cfg.ExecTimeoutMs <= 0 {
		return nil, fmt.Errorf("FORGETERM_EXEC_TIMEOUT_MS must be positive, got %d", cfg.ExecTimeoutMs)
	}
	if cfg.MaxOutputLength <= 0 {
		return nil, fmt.Errorf("FORGETERM_MAX_OUTPUT_LENGTH must be positive, got %d", cfg.MaxOutputLength)
	}
	if cfg.MaxSessions <= 0 {
		return nil, fmt.Errorf("FORGETERM_MAX_SESSIONS must be positive, got %d", cfg.MaxSessions)
	}

	return cfg, nil
}

// ExecutionConfig derives the executor settings.
func (c *Config) ExecutionConfig() ExecutionConfig {
	allowed := make([]string, len(c.AllowedCommands))
	copy(allowed, c.AllowedCommands)
	return ExecutionConfig{
		AllowRealExecution: c.AllowRealExecution,
		TimeoutMs:          c.ExecTimeoutMs,
		MaxOutputLength:    c.MaxOutputLength,
		AllowedCommands:    allowed,
	}
}

// LogConfig derives the logger settings.
func (c *Config) LogConfig() LogConfig {
	return LogConfig{Level: c.LogLevel, Format: c.LogFormat, OutputPath: c.LogFile}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

// envList splits a comma-separated variable, dropping empty items.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
