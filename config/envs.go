package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the runtime configuration values.
type Config struct {
	Addr       string // listen address for the HTTP service
	GinMode    string // gin mode (release, debug, test)
	LogLevel   string // zerolog level name
	MetricsDir string // root folder for experiment CSV output
}

// Load reads configuration from environment variables, honoring a .env
// file when one is present. Every value has a default; nothing is
// required.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env file could not be loaded")
	}

	return Config{
		Addr:       getEnvWithDefault("CROSSOVER_ADDR", ":8080"),
		GinMode:    getEnvWithDefault("GIN_MODE", "release"),
		LogLevel:   getEnvWithDefault("LOG_LEVEL", "info"),
		MetricsDir: getEnvWithDefault("METRICS_DIR", "experiments"),
	}
}

// getEnvWithDefault retrieves an environment variable or falls back.
func getEnvWithDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
