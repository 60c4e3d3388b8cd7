package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Orders    OrdersConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Observ    ObservabilityConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins []string
}

// UpstreamConfig describes the seller API this service reads from.
// A zero Timeout leaves the transport default in place.
type UpstreamConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	ImageTimeout      time.Duration
	ReportRange       string
}

// OrdersConfig carries the order-history filters. An empty value drops
// the filter from the upstream query.
type OrdersConfig struct {
	CategoryID string
	SearchText string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig enables insight events when Brokers is set. The alert
// worker runs when ConsumerGroup is also set. PublishTimeout bounds the
// events sent by one request.
type KafkaConfig struct {
	Brokers        []string
	TopicInsight   string
	ConsumerGroup  string
	PublishTimeout time.Duration
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	upstreamTimeout, _ := strconv.Atoi(getEnv("UPSTREAM_TIMEOUT_SECONDS", "0"))
	imageTimeout, _ := strconv.Atoi(getEnv("IMAGE_TIMEOUT_SECONDS", "15"))
	upstreamRPS, _ := strconv.ParseFloat(getEnv("UPSTREAM_RPS", "0"), 64)
	perMinute, _ := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "120"))
	publishMillis, _ := strconv.Atoi(getEnv("KAFKA_PUBLISH_TIMEOUT_MS", "2000"))

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "5000"),
			Env:         getEnv("ENV", "development"),
			CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Upstream: UpstreamConfig{
			BaseURL:           getEnv("UPSTREAM_BASE_URL", "https://sandbox.diginext.ir/api/v3"),
			Timeout:           time.Duration(upstreamTimeout) * time.Second,
			RequestsPerSecond: upstreamRPS,
			ImageTimeout:      time.Duration(imageTimeout) * time.Second,
			ReportRange:       getEnv("SALES_REPORT_RANGE", "last_7_days"),
		},
		Orders: OrdersConfig{
			CategoryID: lookupEnv("ORDERS_CATEGORY_ID", "123"),
			SearchText: lookupEnv("ORDERS_SEARCH_TEXT", "1234"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:        splitList(getEnv("KAFKA_BROKERS", "")),
			TopicInsight:   getEnv("KAFKA_TOPIC_INSIGHT_EVENTS", "insight-events"),
			ConsumerGroup:  lookupEnv("KAFKA_CONSUMER_GROUP", "seller-insight-alerts"),
			PublishTimeout: time.Duration(publishMillis) * time.Millisecond,
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: perMinute,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, upstream=%s", cfg.Server.Env, cfg.Server.Port, cfg.Upstream.BaseURL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// lookupEnv differs from getEnv in that an explicitly empty variable wins
// over the default.
func lookupEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
