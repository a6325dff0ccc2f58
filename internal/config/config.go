// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the monitor daemon.
type Config struct {
	Port               string
	DatabaseURL        string
	RedisURL           string
	AlertChannel       string // Redis pub-sub channel for notification events
	CheckIntervalHours int    // How often the cron job fires
	WorkerCount        int    // Width of the per-batch worker pool
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval := 12
	if s := os.Getenv("CHECK_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("CHECK_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	workers := 5
	if s := os.Getenv("WORKER_COUNT"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("WORKER_COUNT must be a positive integer, got %q", s)
		}
		workers = v
	}

	channel := os.Getenv("ALERT_CHANNEL")
	if channel == "" {
		channel = "price.alerts"
	}

	port := os.Getenv("MONITOR_PORT")
	if port == "" {
		port = "8082"
	}

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           redisURL,
		AlertChannel:       channel,
		CheckIntervalHours: interval,
		WorkerCount:        workers,
	}, nil
}
