package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Agent       AgentConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Path string
}

// AgentConfig holds everything the command orchestrator needs: the
// Anthropic credential, model selection, and its safety limits.
type AgentConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	MaxInputLength int
	MaxToolRounds  int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
// The Anthropic API key is the one setting with no default: its absence
// is a startup failure, not a per-command one.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "taskpilot"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Path: getString("DATABASE_PATH", "./data/tasks.db"),
		},
		Agent: AgentConfig{
			APIKey:         os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL:        os.Getenv("ANTHROPIC_BASE_URL"),
			Model:          getString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			MaxTokens:      getInt("AGENT_MAX_TOKENS", 1024),
			MaxInputLength: getInt("AGENT_MAX_INPUT_LENGTH", 1000),
			MaxToolRounds:  getInt("AGENT_MAX_TOOL_ROUNDS", 10),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT", 45*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	if cfg.Agent.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set: create a .env file with your key or export it")
	}

	return cfg, nil
}

// Address returns the HTTP listen address.
func (c *Config) Address() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
