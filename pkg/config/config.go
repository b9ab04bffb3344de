package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	Env               string
	PostgresConnStr   string
	MongoURI          string
	JWTSecret         string
	CachePath         string
	ReconcileInterval time.Duration
}

// Load reads configuration from the environment, with a .env file as a
// convenience when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		PostgresConnStr:   getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:          getEnv("MONGO_URI", ""),
		JWTSecret:         getEnv("JWT_SECRET", "supersecretjwtkey"),
		CachePath:         getEnv("CACHE_PATH", "chainfeed-cache.db"),
		ReconcileInterval: getDurationSeconds("SYNC_INTERVAL_SECONDS", 15*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		log.Printf("Ignoring invalid %s value %q.", key, value)
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
