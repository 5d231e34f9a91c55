package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	strs "sbos/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	BaseURL     string
	AdminJWTKey string
}

// Logging selects the slog handler.
type Logging struct {
	Level  string
	Format string
}

// Engine locates domain configuration and controls background tasks.
type Engine struct {
	ConfigDir   string
	WatchConfig bool
	AppCommand  []string
	MonitorTick time.Duration
	AuditOutbox int
}

// RedisConfig selects the shared rate-limit backend. Empty URL keeps
// buckets in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables audit fan-out when Brokers is non-empty.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	Partitions int32
}

// InfluxConfig enables time-series recording when URL is set.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Config is the whole process configuration.
type Config struct {
	Server      Server
	Logging     Logging
	Engine      Engine
	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	Influx      InfluxConfig
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := getenv("SBOS_ADDR", ":8083")
	return Config{
		Server: Server{
			Addr:        addr,
			BaseURL:     getenv("SBOS_BASE_URL", "http://localhost"+addr),
			AdminJWTKey: os.Getenv("SBOS_ADMIN_JWT_KEY"),
		},
		Logging: Logging{
			Level:  getenv("SBOS_LOG_LEVEL", "info"),
			Format: getenv("SBOS_LOG_FORMAT", "json"),
		},
		Engine: Engine{
			ConfigDir:   getenv("SBOS_CONFIG_DIR", "configs"),
			WatchConfig: os.Getenv("SBOS_WATCH_CONFIG") == "true",
			AppCommand:  strings.Fields(os.Getenv("SBOS_APP_COMMAND")),
			MonitorTick: getDuration("SBOS_MONITOR_TICK", time.Second),
			AuditOutbox: getInt("SBOS_AUDIT_OUTBOX", 10_000),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getenv("KAFKA_AUDIT_TOPIC", "sbos.audit"),
			Partitions: int32(getInt("KAFKA_AUDIT_PARTITIONS", 3)),
		},
		Influx: InfluxConfig{
			URL:    os.Getenv("INFLUX_URL"),
			Token:  os.Getenv("INFLUX_TOKEN"),
			Org:    getenv("INFLUX_ORG", "sbos"),
			Bucket: getenv("INFLUX_BUCKET", "setpoints"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strs.DedupeAndTrim(strings.Split(s, ","))
}
