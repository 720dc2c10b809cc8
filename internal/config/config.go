package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"studiospace/internal/pkg/validator"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "studio.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTAccessTTL     = "24h"
	defaultStoreTimeout     = "5s"
	defaultKafkaTopic       = "reservations"
	defaultBookingRetention = "2160h"
	defaultEventQueueSize   = "256"
	defaultEventTimeout     = "5s"
)

type Config struct {
	AppEnv             string        `validate:"required"`
	HTTPAddr           string        `validate:"required"`
	DatabaseURL        string        `validate:"required"`
	JWTSecret          string        `validate:"required"`
	JWTAccessTTL       time.Duration `validate:"gt=0"`
	StoreTimeout       time.Duration `validate:"gt=0"`
	KafkaBrokers       []string
	KafkaTopic         string        `validate:"required_with=KafkaBrokers"`
	EventQueueSize     int           `validate:"gt=0"`
	EventTimeout       time.Duration `validate:"gt=0"`
	BookingRetention   time.Duration `validate:"gt=0"`
	CORSAllowedOrigins []string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.KafkaBrokers = parseListEnv("KAFKA_BROKERS")
	cfg.KafkaTopic = strings.TrimSpace(getEnv("KAFKA_TOPIC", defaultKafkaTopic))
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.StoreTimeout, err = parseDurationEnv("STORE_TIMEOUT", defaultStoreTimeout)
	if err != nil {
		return nil, err
	}
	cfg.BookingRetention, err = parseDurationEnv("BOOKING_RETENTION", defaultBookingRetention)
	if err != nil {
		return nil, err
	}
	cfg.EventTimeout, err = parseDurationEnv("EVENT_PUBLISH_TIMEOUT", defaultEventTimeout)
	if err != nil {
		return nil, err
	}
	cfg.EventQueueSize, err = parseIntEnv("EVENT_QUEUE_SIZE", defaultEventQueueSize)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s kafka=%t store_timeout=%s", cfg.AppEnv, cfg.HTTPAddr, len(cfg.KafkaBrokers) > 0, cfg.StoreTimeout)
	return cfg, nil
}

func (c *Config) IsProd() bool { return isProdLike(c.AppEnv) }

func validateConfig(cfg *Config) error {
	if err := validator.Error(cfg); err != nil {
		return err
	}
	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseListEnv(name string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(name), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
