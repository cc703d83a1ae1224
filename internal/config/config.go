package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth (empty disables authentication)
	APIKey string

	// Answer service
	AnswerAPIURL   string
	AnswerAPIKey   string
	AnswerModel    string
	RequestTimeout time.Duration

	// Answer orchestration
	BatchSize  int
	BatchDelay time.Duration
	RetryDelay time.Duration

	// Question validation
	MinChoiceCount int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Run state
	RunTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCUCHEAT_API_KEY"),

		AnswerAPIURL:   envOr("ANSWER_API_URL", "https://ai.hackclub.com/chat/completions"),
		AnswerAPIKey:   os.Getenv("ANSWER_API_KEY"),
		AnswerModel:    os.Getenv("ANSWER_MODEL"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 60*time.Second),

		BatchSize:  envInt("BATCH_SIZE", 10),
		BatchDelay: envDuration("BATCH_DELAY", 500*time.Millisecond),
		RetryDelay: envDuration("RETRY_DELAY", 1*time.Second),

		MinChoiceCount: envInt("MIN_CHOICE_COUNT", 2),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		RunTTL: envDuration("RUN_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 500 * time.Millisecond
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}
	if cfg.MinChoiceCount <= 0 {
		cfg.MinChoiceCount = 2
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 1 * time.Hour
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	return cfg
}

func (c Config) Validate() error {
	if c.AnswerAPIURL == "" {
		return fmt.Errorf("ANSWER_API_URL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
