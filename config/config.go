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
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Auth     AuthConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	// Path of the SQLite database file. ":memory:" is accepted for tests.
	Path string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicOrder    string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type PaymentConfig struct {
	CardDelay time.Duration
	UPIDelay  time.Duration
	CODDelay  time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, _ := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "techorbit.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicOrder:    getEnv("KAFKA_TOPIC_ORDER_EVENTS", "order-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "techorbit-notifications"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:  time.Duration(tokenTTL) * time.Hour,
		},
		Payment: PaymentConfig{
			CardDelay: getDurationMS("PAYMENT_CARD_DELAY_MS", 2000),
			UPIDelay:  getDurationMS("PAYMENT_UPI_DELAY_MS", 1200),
			CODDelay:  getDurationMS("PAYMENT_COD_DELAY_MS", 4000),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s", cfg.Server.Env, cfg.Server.Port)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDurationMS(key string, defaultMS int) time.Duration {
	ms, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultMS)))
	if err != nil {
		ms = defaultMS
	}
	return time.Duration(ms) * time.Millisecond
}
