// Package config loads the server settings from .env files and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config is the complete server configuration.
type Config struct {
	Port           string
	GinMode        string
	DataDir        string
	RateLimitRPS   float64
	RateLimitBurst int
	MonthlyQuota   int
	AllowedOrigins []string
	FetchTimeout   time.Duration
	SignalTimeout  time.Duration
	MaxBodyBytes   int64
	RetainMonths   int
	MetricsEnabled bool

	LogLevel  string
	LogFormat string
	LogFile   string
}

// LoadEnv loads .env.development when present, otherwise .env. It reports
// which file was used, or "" when neither exists. Existing environment
// variables are never overridden.
func LoadEnv() string {
	for _, name := range []string{".env.development", ".env"} {
		if err := godotenv.Load(name); err == nil {
			return name
		}
	}
	return ""
}

// FromEnv reads the configuration from the environment, applying defaults
// for unset variables. Malformed values are errors.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:           envString("PORT", "8082"),
		GinMode:        envString("GIN_MODE", gin.ReleaseMode),
		DataDir:        envString("DATA_DIR", "./data"),
		AllowedOrigins: splitList(envString("ALLOWED_ORIGINS", "*")),
		LogLevel:       envString("LOG_LEVEL", "info"),
		LogFormat:      envString("LOG_FORMAT", "console"),
		LogFile:        os.Getenv("LOG_FILE"),
	}

	var err error
	if cfg.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", 2); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 5); err != nil {
		return Config{}, err
	}
	if cfg.MonthlyQuota, err = envInt("MONTHLY_QUOTA", 0); err != nil {
		return Config{}, err
	}
	if cfg.RetainMonths, err = envInt("STATS_RETAIN_MONTHS", 2); err != nil {
		return Config{}, err
	}
	if cfg.FetchTimeout, err = envDuration("FETCH_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SignalTimeout, err = envDuration("SIGNAL_TIMEOUT", 7*time.Second); err != nil {
		return Config{}, err
	}
	maxBody, err := envInt("MAX_BODY_BYTES", 2<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.MetricsEnabled, err = envBool("METRICS_ENABLED", true); err != nil {
		return Config{}, err
	}

	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return Config{}, fmt.Errorf("GIN_MODE: unknown mode %q", cfg.GinMode)
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst < 1 {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if cfg.MonthlyQuota < 0 {
		return Config{}, fmt.Errorf("MONTHLY_QUOTA must not be negative")
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// envDuration accepts Go durations ("7s") or plain milliseconds ("7000").
func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
