package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	WorkerCount int
	ThumbWidth  int
	ThumbHeight int
	LogLevel    string
}

// Load reads runtime settings from the environment, after a best-effort
// .env load so local runs can keep overrides out of the shell profile.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		WorkerCount: getEnvAsInt("WORKER_COUNT", 4),
		ThumbWidth:  getEnvAsInt("THUMB_WIDTH", 64),
		ThumbHeight: getEnvAsInt("THUMB_HEIGHT", 48),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
