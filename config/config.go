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
)

// ErrMissingDatabaseURL is returned by Load when DATABASE_URL is unset.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Config holds all configuration for the application
type Config struct {
	DBUrl       string
	Environment string
	Port        string
	LogLevel    string

	AllowedOrigins []string
	RequestTimeout time.Duration

	DBConnectTimeout time.Duration
	DBMaxOpenConns   int

	EmailProvider    string
	EmailFromAddress string
	EmailFromName    string

	AWSRegion             string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	SESInsecureSkipVerify bool

	ImageStoreProvider string
	S3Bucket           string
	S3PublicBaseURL    string
	ImageFolder        string
	MaxUploadBytes     int64

	BookingRateLimitPerMinute int
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// In production .env might not exist and we rely on system environment variables.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}
	return FromEnv(env, os.Getenv)
}

// FromEnv builds a Config from getenv without touching .env files.
func FromEnv(env string, getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}
	cfg := &Config{
		Environment: env,
		DBUrl:       getenv("DATABASE_URL"),
		Port:        p.str("PORT", "8080"),
		LogLevel:    p.str("LOG_LEVEL", "info"),

		AllowedOrigins: p.list("CORS_ALLOWED_ORIGINS"),
		RequestTimeout: p.duration("REQUEST_TIMEOUT", 10*time.Second),

		DBConnectTimeout: p.duration("DB_CONNECT_TIMEOUT", 10*time.Second),
		DBMaxOpenConns:   p.int("DB_MAX_OPEN_CONNS", 10),

		EmailProvider:    p.str("EMAIL_PROVIDER", "noop"),
		EmailFromAddress: getenv("EMAIL_FROM_ADDRESS"),
		EmailFromName:    p.str("EMAIL_FROM_NAME", "DevEvent"),

		AWSRegion:             getenv("AWS_REGION"),
		AWSAccessKeyID:        getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:    getenv("AWS_SECRET_ACCESS_KEY"),
		SESInsecureSkipVerify: p.bool("AWS_SES_INSECURE_SKIP_VERIFY"),

		ImageStoreProvider: p.str("IMAGE_STORE_PROVIDER", "disabled"),
		S3Bucket:           getenv("S3_BUCKET"),
		S3PublicBaseURL:    getenv("S3_PUBLIC_BASE_URL"),
		ImageFolder:        p.str("IMAGE_FOLDER", "DevEvent"),
		MaxUploadBytes:     int64(p.int("MAX_UPLOAD_BYTES", 10<<20)),

		BookingRateLimitPerMinute: p.int("BOOKING_RATE_LIMIT_PER_MINUTE", 10),
	}
	if p.err != nil {
		return nil, p.err
	}
	if cfg.DBUrl == "" {
		return nil, ErrMissingDatabaseURL
	}
	return cfg, nil
}

// parser reads typed values and keeps the first parse error.
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) list(key string) []string {
	var out []string
	for _, v := range strings.Split(p.getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

func (p *parser) bool(key string) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, err)
	}
	return b
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config %s: %w", key, err)
	}
}
