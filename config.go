package main

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port            string
	Env             string
	MongoURL        string
	MongoDB         string
	RedisURL        string
	KafkaBrokers    string
	KafkaOrderTopic string
	JWTSecret       string
	AdminUsername   string
	// AdminPasswordHash is a bcrypt hash; the plaintext never appears in config.
	AdminPasswordHash string
	CartTTL           time.Duration
	OrderCacheTTL     time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		MongoURL:          getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "usman_fast_food"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		KafkaBrokers:      os.Getenv("KAFKA_BROKERS"),
		KafkaOrderTopic:   getEnv("KAFKA_ORDER_TOPIC", "order.events"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CartTTL:           time.Hour * 24 * 7,
		OrderCacheTTL:     10 * time.Minute,
	}

	if v := os.Getenv("CART_TTL_HOURS"); v != "" {
		var hours int
		if _, err := fmt.Sscanf(v, "%d", &hours); err == nil && hours > 0 {
			cfg.CartTTL = time.Duration(hours) * time.Hour
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
