package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port string

	Storage    string // postgres | memory
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret              string
	PasswordResetExpiry    time.Duration
	AppURL                 string
	StaffBootstrapSecret   string
	Notifications          string // asynq | off
	NotificationsProcessor bool

	MailProvider string // smtp | plunk
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	MailReplyTo  string
	PlunkAPIKey  string
	PlunkFrom    string
	PlunkAPIURL  string

	MediaBackend string // local | gridfs
	MediaDir     string
	MongoURI     string
	MongoDB      string

	LogLevel  string
	LogFormat string
}

// Load reads .env when present and falls back to defaults for anything unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		Storage:                getEnv("STORAGE", "postgres"),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "coderr"),
		DBPassword:             getEnv("DB_PASSWORD", "coderr"),
		DBName:                 getEnv("DB_NAME", "coderr"),
		DBSSLMode:              getEnv("DB_SSLMODE", "disable"),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		CacheTTL:               time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		JWTSecret:              getEnv("JWT_SECRET", ""),
		PasswordResetExpiry:    time.Duration(getEnvAsInt("PASSWORD_RESET_EXP_MINUTES", 30)) * time.Minute,
		AppURL:                 getEnv("APP_URL", "http://localhost:3000"),
		StaffBootstrapSecret:   getEnv("STAFF_BOOTSTRAP_SECRET", ""),
		Notifications:          getEnv("NOTIFICATIONS", "off"),
		NotificationsProcessor: getEnvAsBool("NOTIFICATIONS_PROCESSOR", true),
		MailProvider:           getEnv("MAIL_PROVIDER", ""),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnv("SMTP_PORT", "465"),
		SMTPUsername:           getEnv("SMTP_USERNAME", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:               getEnv("SMTP_FROM", ""),
		MailReplyTo:            getEnv("MAIL_REPLY_TO", ""),
		PlunkAPIKey:            getEnv("PLUNK_API_KEY", ""),
		PlunkFrom:              getEnv("PLUNK_FROM", ""),
		PlunkAPIURL:            getEnv("PLUNK_API_URL", "https://api.useplunk.com/v1/send"),
		MediaBackend:           getEnv("MEDIA_BACKEND", "local"),
		MediaDir:               getEnv("MEDIA_DIR", "media"),
		MongoURI:               getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                getEnv("MONGO_DB", "coderr"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "json"),
	}

	if cfg.Storage != "postgres" && cfg.Storage != "memory" {
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
	if cfg.MediaBackend != "local" && cfg.MediaBackend != "gridfs" {
		return nil, fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.MediaBackend)
	}
	return cfg, nil
}

// PostgresDSN builds the pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
