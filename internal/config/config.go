// Package config loads and validates application configuration from
// environment variables. A .env file in the working directory is honored
// when present, so local development does not need exported variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// WeatherAPIKey is the OpenWeatherMap API key. Required — both the
	// forecast preview and trip weather summaries depend on it.
	WeatherAPIKey string

	// WeatherBaseURL is the OpenWeatherMap API root.
	// Overridable so tests can point the client at a local stub.
	WeatherBaseURL string

	// GeocodeBaseURL is the OpenWeatherMap direct-geocoding API root.
	GeocodeBaseURL string

	// PhotonBaseURL is the Photon location-search API root.
	PhotonBaseURL string

	// ImageDir is the app-private directory trip images are copied into.
	// Defaults to "./data/images"; created on startup if missing.
	ImageDir string

	// ImageCacheBytes bounds the in-memory LRU image cache.
	// Defaults to 32 MiB.
	ImageCacheBytes int64

	// SessionFile is where the current-session marker is persisted.
	// Defaults to "./data/session.json".
	SessionFile string
}

// Load reads configuration from the environment (and an optional .env file)
// and returns a Config. Returns an error listing any required variables that
// are not set.
func Load() (Config, error) {
	// Missing .env is the normal production case, not an error.
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		WeatherBaseURL: getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		GeocodeBaseURL: getEnv("GEOCODE_BASE_URL", "https://api.openweathermap.org/geo/1.0"),
		PhotonBaseURL:  getEnv("PHOTON_BASE_URL", "https://photon.komoot.io"),
		ImageDir:       getEnv("IMAGE_DIR", "./data/images"),
		SessionFile:    getEnv("SESSION_FILE", "./data/session.json"),
	}

	cacheBytes := getEnv("IMAGE_CACHE_BYTES", "33554432")
	n, err := strconv.ParseInt(cacheBytes, 10, 64)
	if err != nil || n <= 0 {
		return Config{}, fmt.Errorf("IMAGE_CACHE_BYTES must be a positive integer, got %q", cacheBytes)
	}
	cfg.ImageCacheBytes = n

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.WeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.WeatherAPIKey == "" {
		missing = append(missing, "OPENWEATHER_API_KEY")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
