package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TokenTTL is the lifetime of issued bearer tokens.
const TokenTTL = 40 * time.Hour

// Config holds the application configuration
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	JWTSecret string
	TokenTTL  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioPublicURL string
	MinioUseSSL    bool

	SendgridAPIKey string
	EmailSender    string

	CORSOrigins []string
	IsProd      bool
}

// LoadConfig loads configuration from the environment, reading a .env file first if present
func LoadConfig() *Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function and fills in defaults.
func FromEnv(getenv func(string) string) *Config {
	redisDB, _ := strconv.Atoi(getenv("REDIS_DB"))
	cfg := &Config{
		Port:                getenv("PORT"),
		MongoURI:            getenv("MONGO_URI"),
		MongoDB:             getenv("MONGO_DB"),
		JWTSecret:           getenv("JWT_SECRET"),
		TokenTTL:            TokenTTL,
		RedisAddr:           getenv("REDIS_ADDR"),
		RedisPassword:       getenv("REDIS_PASSWORD"),
		RedisDB:             redisDB,
		StripeSecretKey:     getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            strings.ToLower(getenv("CURRENCY")),
		MinioEndpoint:       getenv("MINIO_ENDPOINT"),
		MinioAccessKey:      getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:      getenv("MINIO_SECRET_KEY"),
		MinioBucket:         getenv("MINIO_BUCKET"),
		MinioPublicURL:      getenv("MINIO_PUBLIC_URL"),
		MinioUseSSL:         getenv("MINIO_USE_SSL") == "true",
		SendgridAPIKey:      getenv("SENDGRID_API_KEY"),
		EmailSender:         getenv("EMAIL_SENDER"),
		CORSOrigins:         splitList(getenv("CORS_ORIGINS")),
		IsProd:              getenv("IS_PROD") == "true",
	}
	if cfg.Port == "" {
		cfg.Port = "9000"
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://localhost:27017"
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "wearero"
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.MinioBucket == "" {
		cfg.MinioBucket = "wearero"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:5173"}
	}
	return cfg
}

// PaymentsEnabled reports whether a Stripe key is configured.
func (c *Config) PaymentsEnabled() bool {
	return c.StripeSecretKey != ""
}

// UploadsEnabled reports whether MinIO credentials are configured.
func (c *Config) UploadsEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
