package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode      string // Set via flag, not env
	MockServices bool

	// MongoDB
	MongoURI          string
	MongoDbName       string
	MongoTransactions bool
	StoreCallTimeout  time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AcceptLockTTL time.Duration

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort            string
	ServiceApiPort     string
	CorsAllowedOrigins []string

	// Payments
	StripeSecretKey string
	PaymentCurrency string

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string
	LogEmailsPath   string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ImageBaseS3URL     string
	ImageMaxDimension  int
	ImageMaxSizeMB     int

	AppName string
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode,
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string, fallbacks ...string) (string, error) {
		for _, k := range append([]string{key}, fallbacks...) {
			if value, exists := os.LookupEnv(k); exists && value != "" {
				return value, nil
			}
		}
		return "", fmt.Errorf("missing required environment variable: %s", key)
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "propertyDB")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	// ACCESS_TOKEN_SECRET is the name the web client's deployment has always used.
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET", "ACCESS_TOKEN_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.ApiPort = getEnv("API_PORT", getEnv("PORT", "5000"))
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.CorsAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	cfg.StripeSecretKey = getEnv("STRIPE_SECRET_KEY", "")
	cfg.PaymentCurrency = strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd"))
	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@property-prospect.example.com")
	cfg.LogEmailsPath = getEnv("LOG_EMAILS", "")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ImageBaseS3URL = strings.TrimRight(getEnv("IMAGE_BASE_S3_URL", ""), "/")
	cfg.AppName = getEnv("APP_NAME", "Property Prospect")
	cfg.MockServices = getEnv("MOCK_SERVICES", "") == "true"

	cfg.MongoTransactions, err = strconv.ParseBool(getEnv("MONGO_TRANSACTIONS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONGO_TRANSACTIONS: %w", err)
	}

	storeTimeoutMs, err := strconv.ParseInt(getEnv("STORE_CALL_TIMEOUT_MS", "5000"), 10, 64)
	if err != nil || storeTimeoutMs <= 0 {
		return nil, fmt.Errorf("invalid STORE_CALL_TIMEOUT_MS: %q", getEnv("STORE_CALL_TIMEOUT_MS", ""))
	}
	cfg.StoreCallTimeout = time.Duration(storeTimeoutMs) * time.Millisecond

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	lockTTLSeconds, err := strconv.ParseInt(getEnv("ACCEPT_LOCK_TTL_SECONDS", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ACCEPT_LOCK_TTL_SECONDS: %w", err)
	}
	cfg.AcceptLockTTL = time.Duration(lockTTLSeconds) * time.Second

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "3600"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	cfg.SmtpPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg.ImageMaxDimension, err = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}

	cfg.ImageMaxSizeMB, err = strconv.Atoi(getEnv("IMAGE_MAX_SIZE_MB", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_SIZE_MB: %w", err)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
