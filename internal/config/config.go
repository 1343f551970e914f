package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	RedisURL      string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	MetricsPort   string
	HTTPAddr      string
	SessionTTL    time.Duration

	// PushgatewayURL receives the ingestion job's counters; empty disables the push.
	PushgatewayURL string

	// CatalogSource is the products.ts file read by the ingestion job.
	CatalogSource string
	CatalogArray  string

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	// .env at the project root, then the working directory
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()
	return &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		SessionTTL:     getDuration("SESSION_TTL", 30*time.Minute),
		CatalogSource:  getEnv("CATALOG_SOURCE", "project/src/data/products.ts"),
		CatalogArray:   getEnv("CATALOG_ARRAY", "products"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
