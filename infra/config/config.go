package config

import (
	"os"
	"strconv"
	"time"
)

const defaultReservationTimeout = 10 * time.Minute

type Config struct {
	ServiceName        string
	Port               string
	PGDSN              string
	CatalogURL         string
	RedisAddr          string
	KafkaBrokers       string
	KafkaTopic         string
	MongoURI           string
	MongoDatabase      string
	LokiURL            string
	ReservationTimeout time.Duration
}

func Load() *Config {
	return &Config{
		ServiceName:        getEnv("SERVICE_NAME", "inventory"),
		Port:               getEnv("PORT", "3134"),
		PGDSN:              os.Getenv("PG_DSN"),
		CatalogURL:         os.Getenv("CATALOG_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "inventory.events"),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDatabase:      getEnv("MONGO_DATABASE", "storefront"),
		LokiURL:            os.Getenv("LOKI_URL"),
		ReservationTimeout: reservationTimeout(),
	}
}

func reservationTimeout() time.Duration {
	if s := os.Getenv("RESERVATION_TIMEOUT_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultReservationTimeout
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
