package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"aromasens/logger"
)

// LoadEnv loads environment variables from a .env file.
// Variables already present in the process environment win.
func LoadEnv(filename string, log *logger.Logger) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(filename); err != nil {
		return fmt.Errorf("error loading %s: %w", filename, err)
	}
	log.Info("Loaded environment variables", "file", filename)
	return nil
}

// LoadEnvWithFallback tries multiple .env file locations
func LoadEnvWithFallback(log *logger.Logger) error {
	locations := []string{
		".env.local", // Local override
		".env",
		"config/.env",
	}

	for _, location := range locations {
		if err := LoadEnv(location, log); err != nil {
			log.Warn("Could not load env file", "file", location, "error", err)
		}
	}
	return nil
}

// GetEnv returns the trimmed value of name, or def when unset
func GetEnv(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

// GetEnvBool accepts 1/true/yes/on as true
func GetEnvBool(name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

// GetEnvDuration parses name with time.ParseDuration, falling back to def
func GetEnvDuration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
