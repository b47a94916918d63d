package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	MetricsPort string
	WorkerCount int
	FeedTimeout time.Duration
	LogLevel    string
	StoresFile  string
	SyncLockTTL time.Duration
}

func Load() *Config {
	// .env at the project root when run from cmd/<name>
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", "sqlite://vintagefeed.db"),
		RedisURL:    os.Getenv("REDIS_URL"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		WorkerCount: getEnvInt("WORKER_COUNT", 4),
		FeedTimeout: getEnvDuration("FEED_TIMEOUT", 20*time.Second),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		StoresFile:  getEnv("STORES_FILE", "stores.yml"),
		SyncLockTTL: getEnvDuration("SYNC_LOCK_TTL", 5*time.Minute),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil && v > 0 {
		return v
	}
	return d
}

func getEnvDuration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil && v > 0 {
		return v
	}
	return d
}
