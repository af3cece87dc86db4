// Package config loads and validates the service configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/pr-warden/internal/logger"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port string
}

// JobsConfig shapes the shared worker pool and the job registry GC.
type JobsConfig struct {
	MaxWorkers       int
	QueueSize        int
	AnalysisDeadline time.Duration
	JobTTL           time.Duration
	SweepInterval    time.Duration
}

// BatchConfig bounds batch fan-out.
type BatchConfig struct {
	DefaultItems int
	MaxItems     int
	Retention    time.Duration
}

// AIConfig selects and tunes the analysis model provider.
type AIConfig struct {
	LLMProvider  string
	OllamaHost   string
	GeminiAPIKey string
	Model        string
}

// GitHubConfig holds source-control host credentials. AuthMode is either
// "pat" (personal access token) or "app" (GitHub App installation).
type GitHubConfig struct {
	AuthMode       string
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// DBConfig holds the Postgres connection settings for the job history.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig
	Logging  logger.Config
	Jobs     JobsConfig
	Batch    BatchConfig
	AI       AIConfig
	GitHub   GitHubConfig
	Database DBConfig
}

// LoadConfig reads configuration from environment variables and a .env
// file, sets sensible defaults, and validates required fields. It uses
// the Viper library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("JOB_QUEUE_SIZE", 100)
	viper.SetDefault("ANALYSIS_DEADLINE", "5m")
	viper.SetDefault("JOB_TTL", "1h")
	viper.SetDefault("SWEEP_INTERVAL", "5m")
	viper.SetDefault("BATCH_DEFAULT_ITEMS", 5)
	viper.SetDefault("BATCH_MAX_ITEMS", 50)
	viper.SetDefault("BATCH_RETENTION", "24h")
	viper.SetDefault("LLM_PROVIDER", "ollama")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("MODEL_NAME", "gemma3:latest")
	viper.SetDefault("GITHUB_AUTH_MODE", "pat")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "prwarden")
	viper.SetDefault("DB_NAME", "prwarden")
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Logging: logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		Jobs: JobsConfig{
			MaxWorkers:       viper.GetInt("MAX_WORKERS"),
			QueueSize:        viper.GetInt("JOB_QUEUE_SIZE"),
			AnalysisDeadline: viper.GetDuration("ANALYSIS_DEADLINE"),
			JobTTL:           viper.GetDuration("JOB_TTL"),
			SweepInterval:    viper.GetDuration("SWEEP_INTERVAL"),
		},
		Batch: BatchConfig{
			DefaultItems: viper.GetInt("BATCH_DEFAULT_ITEMS"),
			MaxItems:     viper.GetInt("BATCH_MAX_ITEMS"),
			Retention:    viper.GetDuration("BATCH_RETENTION"),
		},
		AI: AIConfig{
			LLMProvider:  viper.GetString("LLM_PROVIDER"),
			OllamaHost:   viper.GetString("OLLAMA_HOST"),
			GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
			Model:        viper.GetString("MODEL_NAME"),
		},
		GitHub: GitHubConfig{
			AuthMode:       viper.GetString("GITHUB_AUTH_MODE"),
			Token:          viper.GetString("GITHUB_TOKEN"),
			AppID:          viper.GetInt64("GITHUB_APP_ID"),
			InstallationID: viper.GetInt64("GITHUB_INSTALLATION_ID"),
			PrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		},
		Database: DBConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			Username:        viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: viper.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the cross-field constraints that viper defaults alone
// cannot enforce.
func (c *Config) Validate() error {
	if c.Jobs.MaxWorkers <= 0 {
		return fmt.Errorf("MAX_WORKERS must be positive")
	}
	if c.Jobs.AnalysisDeadline <= 0 {
		return fmt.Errorf("ANALYSIS_DEADLINE must be positive")
	}
	if c.Batch.DefaultItems < 0 || c.Batch.MaxItems <= 0 {
		return fmt.Errorf("batch item limits must be positive")
	}
	if c.Batch.DefaultItems > c.Batch.MaxItems {
		return fmt.Errorf("BATCH_DEFAULT_ITEMS must not exceed BATCH_MAX_ITEMS")
	}

	switch c.AI.LLMProvider {
	case "ollama":
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set for the gemini provider")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.AI.LLMProvider)
	}

	switch c.GitHub.AuthMode {
	case "pat":
		if c.GitHub.Token == "" {
			return fmt.Errorf("GITHUB_TOKEN must be set for pat auth")
		}
	case "app":
		if c.GitHub.AppID == 0 || c.GitHub.InstallationID == 0 {
			return fmt.Errorf("GITHUB_APP_ID and GITHUB_INSTALLATION_ID must be set for app auth")
		}
		if c.GitHub.PrivateKeyPath == "" {
			return fmt.Errorf("GITHUB_PRIVATE_KEY_PATH must be set for app auth")
		}
	default:
		return fmt.Errorf("unsupported GitHub auth mode: %s", c.GitHub.AuthMode)
	}

	return nil
}
