package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	TrendModeAggregate = "aggregate"
	TrendModeSimulated = "simulated"
)

type Config struct {
	Server    ServerConfig
	Worker    WorkerConfig
	Sim       SimulationConfig
	Trend     TrendConfig
	Feed      FeedConfig
	Stream    StreamConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WorkerConfig struct {
	BufferSize int
}

type SimulationConfig struct {
	IngestInterval time.Duration
	Seed           uint64 // 0 seeds from the clock
	SeedCatalog    bool   // load the example alerts at startup
}

type TrendConfig struct {
	Interval time.Duration
	Length   int
	Mode     string
}

type FeedConfig struct {
	Limit     int // default page size for the live feed
	MaxAlerts int // 0 keeps every alert
}

type StreamConfig struct {
	BufferSize int
	KeepAlive  time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Worker: WorkerConfig{
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Sim: SimulationConfig{
			IngestInterval: getEnvDuration("SIM_INGEST_INTERVAL", 3*time.Second),
			Seed:           getEnvUint("SIM_SEED", 0),
			SeedCatalog:    getEnvBool("SEED_ENABLED", true),
		},
		Trend: TrendConfig{
			Interval: getEnvDuration("TREND_INTERVAL", 3*time.Second),
			Length:   getEnvInt("TREND_LENGTH", 150),
			Mode:     strings.ToLower(getEnv("TREND_MODE", TrendModeAggregate)),
		},
		Feed: FeedConfig{
			Limit:     getEnvInt("FEED_LIMIT", 10),
			MaxAlerts: getEnvInt("FEED_MAX_ALERTS", 0),
		},
		Stream: StreamConfig{
			BufferSize: getEnvInt("STREAM_BUFFER", 100),
			KeepAlive:  getEnvDuration("STREAM_KEEPALIVE", 15*time.Second),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
			Burst: getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Sim.IngestInterval < 100*time.Millisecond {
		return fmt.Errorf("ingest interval must be at least 100ms")
	}
	if c.Trend.Interval < 100*time.Millisecond {
		return fmt.Errorf("trend interval must be at least 100ms")
	}
	if c.Trend.Length < 2 {
		return fmt.Errorf("trend length must be at least 2, got %d", c.Trend.Length)
	}
	if c.Trend.Mode != TrendModeAggregate && c.Trend.Mode != TrendModeSimulated {
		return fmt.Errorf("invalid trend mode: %s", c.Trend.Mode)
	}

	if c.Feed.Limit < 1 {
		return fmt.Errorf("feed limit must be positive, got %d", c.Feed.Limit)
	}
	if c.Feed.MaxAlerts < 0 {
		return fmt.Errorf("feed max alerts cannot be negative")
	}
	if c.Feed.MaxAlerts > 0 && c.Feed.MaxAlerts < c.Feed.Limit {
		return fmt.Errorf("feed max alerts (%d) is below feed limit (%d)", c.Feed.MaxAlerts, c.Feed.Limit)
	}

	if c.Worker.BufferSize < 1 {
		return fmt.Errorf("worker buffer size must be positive")
	}
	if c.Stream.BufferSize < 1 {
		return fmt.Errorf("stream buffer size must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("invalid rate limit: %v rps, burst %d", c.RateLimit.RPS, c.RateLimit.Burst)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvUint(key string, fallback uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			return u
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
