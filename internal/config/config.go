package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at process start and passed to constructors; nothing
// reads the environment after Load returns.
type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	DatabaseURL         string
	DBMaxConns          int32
	DBMinConns          int32
	DBMaxConnLifetime   time.Duration
	DBMaxConnIdleTime   time.Duration
	DBHealthCheckPeriod time.Duration

	RedisURL string

	AccessTokenSecret  string
	RefreshTokenSecret string
	ActivationSecret   string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	ActivationTTL      time.Duration
	SessionTTL         time.Duration

	CookieSecure   bool
	CookieSameSite http.SameSite

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 15*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 2)),
		DBMaxConnLifetime:       getDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		DBMaxConnIdleTime:       getDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		DBHealthCheckPeriod:     getDuration("DB_HEALTH_CHECK_PERIOD", 30*time.Second),
		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379"),
		AccessTokenSecret:       strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret:      strings.TrimSpace(os.Getenv("REFRESH_TOKEN_SECRET")),
		ActivationSecret:        strings.TrimSpace(os.Getenv("ACTIVATION_SECRET")),
		AccessTokenTTL:          getDuration("ACCESS_TOKEN_TTL", 5*time.Minute),
		RefreshTokenTTL:         getDuration("REFRESH_TOKEN_TTL", 72*time.Hour),
		ActivationTTL:           getDuration("ACTIVATION_TTL", 5*time.Minute),
		SessionTTL:              getDuration("SESSION_TTL", 168*time.Hour),
		CookieSecure:            getBool("COOKIE_SECURE", false),
		CookieSameSite:          parseSameSite(getEnv("COOKIE_SAME_SITE", "lax")),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 10),
		SMTPHost:                getEnv("SMTP_HOST", "localhost"),
		SMTPPort:                getInt("SMTP_PORT", 587),
		SMTPUsername:            strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:            strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
		SMTPFrom:                getEnv("SMTP_FROM", "no-reply@localhost"),
		S3Bucket:                strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:                getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:              strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey:             strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey:             strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		S3PublicBaseURL:         strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}

	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}

	if c.ActivationSecret == "" {
		return fmt.Errorf("ACTIVATION_SECRET is required")
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.ActivationTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	if c.SessionTTL < c.RefreshTokenTTL {
		return fmt.Errorf("SESSION_TTL must not be shorter than REFRESH_TOKEN_TTL")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.DBMaxConnLifetime <= 0 || c.DBMaxConnIdleTime <= 0 || c.DBHealthCheckPeriod <= 0 {
		return fmt.Errorf("database pool durations must be positive")
	}

	return nil
}

func parseSameSite(raw string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
