package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	PollInterval      int // seconds between sync passes
	ShutdownTimeout   int // seconds
	MetricsAddr       string
	WriteBatchSize    int // records per storage write batch
	BatchConcurrency  int // write batches processed concurrently
	InterBatchPauseMs int // pause between batch waves
	RecordLimit       int // max records fetched per run, 0 = unlimited
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		DatabaseURL:       dbURL,
		PollInterval:      intFromEnv("POLL_INTERVAL", 300), // sync every 5 minutes
		ShutdownTimeout:   intFromEnv("SHUTDOWN_TIMEOUT", 30),
		MetricsAddr:       stringFromEnv("METRICS_ADDR", ":9090"),
		WriteBatchSize:    intFromEnv("WRITE_BATCH_SIZE", 10),
		BatchConcurrency:  intFromEnv("BATCH_CONCURRENCY", 3),
		InterBatchPauseMs: intFromEnv("INTER_BATCH_PAUSE_MS", 500),
		RecordLimit:       intFromEnv("RECORD_LIMIT", 0),
	}, nil
}

func stringFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Printf("Warning: invalid value for %s (%q), using default %d\n", key, v, fallback)
		return fallback
	}
	return n
}
