package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Session store backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
	SessionBackendMongo  = "mongo"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr string

	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	DefaultZipCode   string
	DefaultCenterLat float64
	DefaultCenterLng float64

	SessionBackend      string
	SessionSecret       []byte
	SessionIssuer       string
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI          string
	MongoDatabase     string
	SessionCollection string
	MongoTimeout      time.Duration

	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

// Load reads .env (when present) and environment variables and returns a fully populated Config.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("COFFEE_API_BASE_URL", "http://localhost:5000")
	v.SetDefault("COFFEE_API_TIMEOUT", "10s")
	v.SetDefault("DEFAULT_ZIP_CODE", "96814")
	v.SetDefault("DEFAULT_CENTER_LAT", 21.3069)
	v.SetDefault("DEFAULT_CENTER_LNG", -157.8583)
	v.SetDefault("SESSION_BACKEND", SessionBackendMemory)
	v.SetDefault("SESSION_ISSUER", "coffee-map-web")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_NAME", "coffee_map_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB", "coffee-map")
	v.SetDefault("SESSION_COLLECTION", "sessions")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func fromViper(v *viper.Viper) (Config, error) {
	secret := strings.TrimSpace(v.GetString("SESSION_SECRET"))
	if secret == "" {
		return Config{}, errors.New("SESSION_SECRET must be configured")
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("SESSION_BACKEND")))
	switch backend {
	case SessionBackendMemory, SessionBackendRedis, SessionBackendMongo:
	default:
		return Config{}, fmt.Errorf("unknown SESSION_BACKEND %q", backend)
	}

	cfg := Config{
		Addr:                v.GetString("HTTP_ADDR"),
		UpstreamBaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("COFFEE_API_BASE_URL")), "/"),
		UpstreamTimeout:     v.GetDuration("COFFEE_API_TIMEOUT"),
		DefaultZipCode:      strings.TrimSpace(v.GetString("DEFAULT_ZIP_CODE")),
		DefaultCenterLat:    v.GetFloat64("DEFAULT_CENTER_LAT"),
		DefaultCenterLng:    v.GetFloat64("DEFAULT_CENTER_LNG"),
		SessionBackend:      backend,
		SessionSecret:       []byte(secret),
		SessionIssuer:       v.GetString("SESSION_ISSUER"),
		SessionTTL:          v.GetDuration("SESSION_TTL"),
		SessionCookieName:   v.GetString("SESSION_COOKIE_NAME"),
		SessionCookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		RedisDB:             v.GetInt("REDIS_DB"),
		MongoURI:            v.GetString("MONGO_URI"),
		MongoDatabase:       v.GetString("MONGO_DB"),
		SessionCollection:   v.GetString("SESSION_COLLECTION"),
		MongoTimeout:        v.GetDuration("MONGO_CONNECT_TIMEOUT"),
		AllowedOrigins:      parseList(v.GetString("API_ALLOWED_ORIGINS"), nil),
		ShutdownTimeout:     v.GetDuration("SHUTDOWN_TIMEOUT"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:           strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	if cfg.UpstreamBaseURL == "" {
		return Config{}, errors.New("COFFEE_API_BASE_URL must not be empty")
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 10 * time.Second
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	return cfg, nil
}

func parseList(raw string, fallback []string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
