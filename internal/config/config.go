package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SMTPConfig holds outgoing mail settings
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// StorageConfig selects and configures the file storage backend
type StorageConfig struct {
	Driver        string // local, gcs or cloudinary
	Root          string
	PublicPrefix  string
	Bucket        string
	CloudinaryURL string
}

// Config is the process configuration read from the environment
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	FirebaseCredentialsPath string
	FirebaseAPIKey          string
	FirebaseAuthDomain      string
	FirebaseProjectID       string

	Storage           StorageConfig
	ImageMaxDimension int

	CurrencySymbol string
	SessionTTL     time.Duration

	SMTP SMTPConfig

	WorkerSchedule string
	ExportEmails   []string
}

// Load reads .env (if present) and the process environment
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	return Config{
		Env:      envOr("ENV", "development"),
		Port:     envOr("PORT", "8080"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    envOr("REDIS_URL", "redis://localhost:6379/0"),

		FirebaseCredentialsPath: envOr("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),
		FirebaseAPIKey:          os.Getenv("FIREBASE_API_KEY"),
		FirebaseAuthDomain:      os.Getenv("FIREBASE_AUTH_DOMAIN"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),

		Storage: StorageConfig{
			Driver:        strings.ToLower(envOr("STORAGE_DRIVER", "local")),
			Root:          envOr("STORAGE_ROOT", "storage/app/public"),
			PublicPrefix:  envOr("STORAGE_PUBLIC_PREFIX", "/storage/"),
			Bucket:        os.Getenv("GCS_BUCKET"),
			CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		},
		ImageMaxDimension: envOrInt("IMAGE_MAX_DIM", 1920),

		CurrencySymbol: envOr("CURRENCY_SYMBOL", "₹"),
		SessionTTL:     time.Duration(envOrInt("SESSION_TTL_HOURS", 120)) * time.Hour,

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("EMAIL_FROM"),
		},

		WorkerSchedule: envOr("WORKER_SCHEDULE", "*/5 * * * *"),
		ExportEmails:   parseCSV(os.Getenv("EXPORT_EMAILS")),
	}
}

// IsProduction reports whether ENV is production
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
