package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var validRegions = map[string]struct{}{
	"cn": {},
	"us": {},
	"eu": {},
	"as": {},
}

type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration
	AppID              string
	AppSecret          string
	Region             string
	RedirectURL        string
	APIBaseURL         string
	SessionSecret      string
	SessionTTL         time.Duration
	DatabasePath       string
	CORSOrigins        []string
	RateLimitRPM       int
	AuthRateLimitRPM   int
	OpenBrowser        bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("PORT", "4001"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		AppID:              strings.TrimSpace(os.Getenv("APP_ID")),
		AppSecret:          strings.TrimSpace(os.Getenv("APP_SECRET")),
		Region:             strings.ToLower(getEnv("REGION", "us")),
		RedirectURL:        strings.TrimSpace(os.Getenv("REDIRECT_URL")),
		APIBaseURL:         strings.TrimSpace(os.Getenv("API_BASE_URL")),
		SessionSecret:      strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionTTL:         getDuration("SESSION_TTL", 720*time.Hour),
		DatabasePath:       getEnv("DATABASE_PATH", "./data/gateway.db"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:   getInt("AUTH_RATE_LIMIT_RPM", 10),
		OpenBrowser:        getBool("OPEN_BROWSER", true),
	}

	// The cloud redirects the OAuth callback to this exact URL; it must match
	// the one registered with the application.
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%s/redirectUrl", cfg.ServerPort)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AppID == "" {
		return fmt.Errorf("APP_ID is required")
	}

	if c.AppSecret == "" {
		return fmt.Errorf("APP_SECRET is required")
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if _, ok := validRegions[c.Region]; !ok {
		return fmt.Errorf("REGION must be one of cn, us, eu, as; got %q", c.Region)
	}

	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("DATABASE_PATH cannot be empty")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
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
