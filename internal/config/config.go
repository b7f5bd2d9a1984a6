package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/backend-troli/internal/pricing"
	"github.com/noah-isme/backend-troli/internal/promo"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string
	CurrencyCode       string

	CartTTL           time.Duration
	CartDefaultMaxQty int
	CartDefaultStock  int

	TaxRateBPS            int
	FreeShippingThreshold int64
	MidTierThreshold      int64
	MidTierFee            int64
	BaseShippingFee       int64

	// PromoCodes is a comma-separated table, e.g.
	// "SAVE10=percent:1000,FREESHIP=freeship". Empty keeps the defaults.
	PromoCodes string

	RateLimit    string
	PersistAsync bool
	PersistQueue string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CurrencyCode:       valueOrDefault(k.String("CURRENCY_CODE"), "USD"),

		CartTTL:           parseDuration(k.String("CART_TTL"), "168h"),
		CartDefaultMaxQty: parseInt(k.String("CART_DEFAULT_MAX_QTY"), 10),
		CartDefaultStock:  parseInt(k.String("CART_DEFAULT_STOCK"), 10),

		TaxRateBPS:            parseInt(k.String("TAX_RATE_BPS"), 800),
		FreeShippingThreshold: parseMinor(k.String("FREE_SHIPPING_THRESHOLD"), 5000),
		MidTierThreshold:      parseMinor(k.String("SHIPPING_MID_THRESHOLD"), 3000),
		MidTierFee:            parseMinor(k.String("SHIPPING_MID_FEE"), 499),
		BaseShippingFee:       parseMinor(k.String("SHIPPING_BASE_FEE"), 999),

		PromoCodes: strings.TrimSpace(k.String("PROMO_CODES")),

		RateLimit:    valueOrDefault(k.String("RATE_LIMIT"), "120-M"),
		PersistAsync: parseBool(k.String("PERSIST_ASYNC")),
		PersistQueue: valueOrDefault(k.String("PERSIST_QUEUE"), "default"),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.TaxRateBPS < 0 || cfg.TaxRateBPS > 10000 {
		return nil, fmt.Errorf("TAX_RATE_BPS out of range: %d", cfg.TaxRateBPS)
	}
	if cfg.CartDefaultMaxQty < 1 {
		return nil, fmt.Errorf("CART_DEFAULT_MAX_QTY must be positive: %d", cfg.CartDefaultMaxQty)
	}
	if _, err := promo.ParseTable(cfg.PromoCodes); err != nil {
		return nil, fmt.Errorf("PROMO_CODES: %w", err)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Pricing returns the pricing constants as an engine config.
func (c *Config) Pricing() pricing.Config {
	return pricing.Config{
		TaxBps:                c.TaxRateBPS,
		FreeShippingThreshold: c.FreeShippingThreshold,
		MidTierThreshold:      c.MidTierThreshold,
		MidTierFee:            c.MidTierFee,
		BaseShippingFee:       c.BaseShippingFee,
	}
}

// Promotions builds the promotion table from PROMO_CODES.
func (c *Config) Promotions() map[string]promo.Promotion {
	table, err := promo.ParseTable(c.PromoCodes)
	if err != nil {
		return promo.DefaultTable()
	}
	return table
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return n
}

func parseMinor(value string, fallback int64) int64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
