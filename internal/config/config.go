package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"taskflow/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	AppURL      string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Per-scope mutation limits (requests per window, per user)
	APIRateLimit    int
	APIRateWindow   time.Duration
	WriteRateLimit  int
	WriteRateWindow time.Duration

	CSRFTrustedOrigins []string

	// SMTP for invitation mail; invites still work without it, the
	// invite link is just not delivered.
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// MinIO object storage for comment attachments
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string

	AttachmentMaxBytes         int64
	AttachmentAllowedMimeTypes []string
}

// Load reads configuration from the environment, with a .env file as
// fallback. DATABASE_URL and JWT_SECRET are required.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:" + port
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	var trusted []string
	if v := os.Getenv("CSRF_TRUSTED_ORIGINS"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			if origin := strings.TrimSpace(raw); origin != "" {
				trusted = append(trusted, origin)
			}
		}
	}

	maxBytes := int64(5 << 20)
	if v := os.Getenv("ATTACHMENT_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxBytes = n
		}
	}

	mimeTypes := []string{"image/png", "image/jpeg", "image/gif", "application/pdf", "text/plain"}
	if v := os.Getenv("ATTACHMENT_ALLOWED_MIME_TYPES"); v != "" {
		mimeTypes = nil
		for _, raw := range strings.Split(v, ",") {
			if mt := strings.TrimSpace(raw); mt != "" {
				mimeTypes = append(mimeTypes, mt)
			}
		}
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "comment-attachments"
	}

	return &Config{
		AppPort:     port,
		AppURL:      appURL,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		APIRateLimit:    envInt("API_RATE_LIMIT", 120),
		APIRateWindow:   envSeconds("API_RATE_WINDOW_SECONDS", time.Minute),
		WriteRateLimit:  envInt("WRITE_RATE_LIMIT", 30),
		WriteRateWindow: envSeconds("WRITE_RATE_WINDOW_SECONDS", time.Minute),

		CSRFTrustedOrigins: trusted,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     os.Getenv("SMTP_PORT"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPFromName: os.Getenv("SMTP_FROM_NAME"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		MinioBucket:    bucket,

		AttachmentMaxBytes:         maxBytes,
		AttachmentAllowedMimeTypes: mimeTypes,
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
