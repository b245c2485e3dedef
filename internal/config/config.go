package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"

	LimitStoreMemory = "memory"
	LimitStoreRedis  = "redis"
)

type RateLimitConfig struct {
	Window time.Duration
	Max    int64
}

type AppConfig struct {
	Port    string
	GinMode string

	StoreDriver string
	DatabaseURL string
	DBMaxConns  int

	DynamoRegion         string
	DynamoEndpoint       string
	DynamoEmployeesTable string
	DynamoAdminsTable    string

	JWTSecret    string
	JWTExpiresIn time.Duration
	JWTIssuer    string
	BcryptCost   int

	RateLimitStore string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	APILimit       RateLimitConfig
	DeviceLimit    RateLimitConfig

	CORSAllowedOrigins []string

	LogLevel       string
	LogDevelopment bool

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	MailFrom      string
	MailSignature string
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (AppConfig, error) {
	_ = godotenv.Load() // load .env if present
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (AppConfig, error) {
	cfg := AppConfig{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "release"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  getEnvAsInt("DB_MAX_CONNS", 10),

		DynamoRegion:         getEnv("DYNAMODB_REGION", "us-east-1"),
		DynamoEndpoint:       os.Getenv("DYNAMODB_ENDPOINT"),
		DynamoEmployeesTable: getEnv("DYNAMODB_EMPLOYEES_TABLE", "employees"),
		DynamoAdminsTable:    getEnv("DYNAMODB_ADMINS_TABLE", "admins"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: getEnvAsDuration("JWT_EXPIRES_IN", 24*time.Hour),
		JWTIssuer:    getEnv("JWT_ISSUER", "employee-admin"),
		BcryptCost:   getEnvAsInt("BCRYPT_COST", 12),

		RateLimitStore: strings.ToLower(getEnv("RATE_LIMIT_STORE", LimitStoreMemory)),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		APILimit: RateLimitConfig{
			Window: getEnvAsDuration("API_RATE_LIMIT_WINDOW", 10*time.Minute),
			Max:    int64(getEnvAsInt("API_RATE_LIMIT_MAX", 1000)),
		},
		DeviceLimit: RateLimitConfig{
			Window: getEnvAsDuration("DEVICE_RATE_LIMIT_WINDOW", 5*time.Minute),
			Max:    int64(getEnvAsInt("DEVICE_RATE_LIMIT_MAX", 1000)),
		},

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogDevelopment: getEnvAsBool("LOG_DEVELOPMENT", false),

		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		MailFrom:      os.Getenv("MAIL_FROM"),
		MailSignature: getEnv("MAIL_SIGNATURE", "The Admin Team"),
	}
	return cfg, cfg.validate()
}

func (c AppConfig) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing required env: JWT_SECRET"))
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("missing required env: DATABASE_URL"))
		}
	case DriverDynamoDB, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	switch c.RateLimitStore {
	case LimitStoreMemory, LimitStoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimitStore))
	}
	return errors.Join(errs...)
}

// MailEnabled reports whether SMTP delivery is configured.
func (c AppConfig) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
