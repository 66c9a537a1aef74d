package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	// Toxicity scoring service
	ScorerURL       string
	ScorerTimeout   time.Duration
	ScorerRateLimit float64 // requests per second

	// Classification thresholds
	ThresholdElements float64
	ThresholdLikely   float64

	// Ingestion
	PollBackoff time.Duration
	StopTimeout time.Duration

	// Fan-out
	SubscriberBuffer int
	MaxSubscribers   int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		ScorerURL: getEnv("SCORER_URL", ""),
	}

	if cfg.ScorerURL == "" {
		return nil, fmt.Errorf("SCORER_URL is required")
	}

	var err error
	if cfg.ScorerTimeout, err = getEnvDuration("SCORER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ScorerRateLimit, err = getEnvFloat("SCORER_RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	if cfg.ThresholdElements, err = getEnvFloat("TOXIC_THRESHOLD_ELEMENTS", 0.20); err != nil {
		return nil, err
	}
	if cfg.ThresholdLikely, err = getEnvFloat("TOXIC_THRESHOLD_LIKELY", 0.60); err != nil {
		return nil, err
	}
	if cfg.PollBackoff, err = getEnvDuration("POLL_BACKOFF", time.Second); err != nil {
		return nil, err
	}
	if cfg.StopTimeout, err = getEnvDuration("STOP_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.SubscriberBuffer, err = getEnvInt("SUBSCRIBER_BUFFER", 500); err != nil {
		return nil, err
	}
	if cfg.MaxSubscribers, err = getEnvInt("MAX_SUBSCRIBERS", 50); err != nil {
		return nil, err
	}

	if cfg.ThresholdElements < 0 || cfg.ThresholdElements > 1 {
		return nil, fmt.Errorf("TOXIC_THRESHOLD_ELEMENTS must be in [0,1], got %v", cfg.ThresholdElements)
	}
	if cfg.ThresholdLikely < 0 || cfg.ThresholdLikely > 1 {
		return nil, fmt.Errorf("TOXIC_THRESHOLD_LIKELY must be in [0,1], got %v", cfg.ThresholdLikely)
	}
	if cfg.ThresholdElements > cfg.ThresholdLikely {
		return nil, fmt.Errorf("TOXIC_THRESHOLD_ELEMENTS (%v) must not exceed TOXIC_THRESHOLD_LIKELY (%v)",
			cfg.ThresholdElements, cfg.ThresholdLikely)
	}
	if cfg.ScorerRateLimit <= 0 {
		return nil, fmt.Errorf("SCORER_RATE_LIMIT must be positive, got %v", cfg.ScorerRateLimit)
	}
	if cfg.SubscriberBuffer <= 0 {
		return nil, fmt.Errorf("SUBSCRIBER_BUFFER must be positive, got %d", cfg.SubscriberBuffer)
	}
	if cfg.MaxSubscribers < 0 {
		return nil, fmt.Errorf("MAX_SUBSCRIBERS must not be negative, got %d", cfg.MaxSubscribers)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 500ms or 2s: %w", key, err)
	}
	return d, nil
}
