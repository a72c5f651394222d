package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting the dashboard needs.
// Values come from the process environment, optionally seeded from a .env file.
type Config struct {
	// APIBaseURL is the root of the remote back-office API, e.g. "https://api.example.com/api".
	APIBaseURL string `validate:"required,url"`

	// SessionSecret signs the browser session cookie.
	SessionSecret string `validate:"required,min=16"`

	// ServerPort is the HTTP listen port for cmd/server.
	ServerPort string `validate:"required,numeric"`

	// AllowedOrigins is a comma-separated CORS allowlist; empty disables CORS entirely.
	AllowedOrigins string

	// CurrencySymbol prefixes every displayed monetary value.
	CurrencySymbol string `validate:"required"`

	// CLIUsername and CLIPassword authenticate cmd/cli against the remote API.
	CLIUsername string
	CLIPassword string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:     os.Getenv("API_BASE_URL"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		ServerPort:     getenvDefault("SERVER_PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		CurrencySymbol: getenvDefault("CURRENCY_SYMBOL", "₹"),
		CLIUsername:    os.Getenv("CLI_USERNAME"),
		CLIPassword:    os.Getenv("CLI_PASSWORD"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
