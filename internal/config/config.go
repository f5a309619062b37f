package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionDriverMemory   = "memory"
	SessionDriverFile     = "file"
	SessionDriverBolt     = "bbolt"
	SessionDriverRedis    = "redis"
	SessionDriverPostgres = "postgres"
)

type Config struct {
	APIBaseURL         string
	RequestTimeout     time.Duration
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	HandlerTimeout     time.Duration
	SessionDriver      string
	SessionFile        string
	SessionBoltFile    string
	SessionNamespace   string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	DatabaseURL        string
	DBMaxConns         int32
	DBMinConns         int32
	CORSOrigins        []string
	RateLimitRPM       int
	AuthRateLimitRPM   int
	LogLevel           string
	LogFormat          string
	MockAPIPort        string
	MockAPIJWTSecret   string
	MockAPIAccessTTL   time.Duration
	MockAPIRefreshTTL  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3000/api"), "/"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 10*time.Second),
		ServerPort:         getEnv("SERVER_PORT", "5173"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		HandlerTimeout:     getDuration("HANDLER_TIMEOUT", 30*time.Second),
		SessionDriver:      strings.ToLower(getEnv("SESSION_DRIVER", SessionDriverBolt)),
		SessionFile:        getEnv("SESSION_FILE", defaultStatePath("session.json")),
		SessionBoltFile:    getEnv("SESSION_BOLT_FILE", "./state/session.db"),
		SessionNamespace:   getEnv("SESSION_NAMESPACE", "default"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		RedisDB:            getInt("REDIS_DB", 0),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         int32(getInt("DB_MAX_CONNS", 4)),
		DBMinConns:         int32(getInt("DB_MIN_CONNS", 0)),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:   getInt("AUTH_RATE_LIMIT_RPM", 20),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		MockAPIPort:        getEnv("MOCKAPI_PORT", "3000"),
		MockAPIJWTSecret:   getEnv("MOCKAPI_JWT_SECRET", "dev-secret"),
		MockAPIAccessTTL:   getDuration("MOCKAPI_ACCESS_TTL", 15*time.Minute),
		MockAPIRefreshTTL:  getDuration("MOCKAPI_REFRESH_TTL", 168*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	switch c.SessionDriver {
	case SessionDriverMemory:
	case SessionDriverFile:
		if strings.TrimSpace(c.SessionFile) == "" {
			return fmt.Errorf("SESSION_FILE cannot be empty")
		}
	case SessionDriverBolt:
		if strings.TrimSpace(c.SessionBoltFile) == "" {
			return fmt.Errorf("SESSION_BOLT_FILE cannot be empty")
		}
	case SessionDriverRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session driver")
		}
	case SessionDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres session driver")
		}
	default:
		return fmt.Errorf("unknown SESSION_DRIVER %q", c.SessionDriver)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}

	return nil
}

func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "./state/" + name
	}
	return dir + "/go-auth-dashboard/" + name
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
