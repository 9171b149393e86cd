// internal/config/config.go
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel           string   `mapstructure:"LOG_LEVEL"`
	HTTPAddr           string   `mapstructure:"HTTP_ADDR"`
	DBURL              string   `mapstructure:"DB_URL"`
	GithubToken        string   `mapstructure:"GITHUB_TOKEN"`
	GithubAPIBaseURL   string   `mapstructure:"GITHUB_API_BASE_URL"`
	OpenAIAPIKey       string   `mapstructure:"OPENAI_API_KEY"`
	OpenAIAPIBaseURL   string   `mapstructure:"OPENAI_API_BASE_URL"`
	OpenAIModel        string   `mapstructure:"OPENAI_MODEL"`
	SessionSecret      string   `mapstructure:"SESSION_SECRET"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.GithubToken == "" {
		return nil, errors.New("GITHUB_TOKEN is a required configuration field")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is a required configuration field")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is a required configuration field")
	}

	return &cfg, nil
}
