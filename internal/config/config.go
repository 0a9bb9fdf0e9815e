// Package config loads service configuration from the process
// environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port string `env:"PORT, default=8090"`

	// Auth for this service's own API.
	APIKey string `env:"FACTUREX_API_KEY"`

	// Upstream invoice data endpoint.
	DataAPIURL string `env:"DATA_API_URL, default=http://localhost:3000"`
	DataAPIKey string `env:"DATA_API_KEY"`

	// Where finished artifacts are written.
	OutputDir string `env:"OUTPUT_DIR, default=exports"`

	// Export pipeline tuning.
	MaxAttempts int           `env:"EXPORT_MAX_ATTEMPTS, default=3"`
	JobTTL      time.Duration `env:"JOB_TTL, default=1h"`

	// Chart raster size in pixels.
	ChartWidth  int `env:"CHART_WIDTH, default=900"`
	ChartHeight int `env:"CHART_HEIGHT, default=450"`
}

// Load reads configuration from the environment.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("FACTUREX_API_KEY is required")
	}
	if c.DataAPIURL == "" {
		return fmt.Errorf("DATA_API_URL is required")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("EXPORT_MAX_ATTEMPTS must be positive")
	}
	return nil
}
