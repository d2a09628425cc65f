package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	AuthMode          string
	AuthJWTSecret     string
	AuthAudience      string
	AuthClockSkewSecs int

	AdminAPIKey string

	PolicyBundlePath string

	RateLimitFailClosed bool
	RateLimitMaxKeys    int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceStarter  string
	StripePricePractice string
	StripePriceFirm     string

	ScannerURL    string
	ScannerAPIKey string

	AnthropicAPIKey string
	AnalysisModel   string

	PDFServiceURL    string
	PDFServiceSecret string

	InviteTTLHours int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:            addr,
		PostgresDSN:         os.Getenv("POSTGRES_DSN"),
		LogLevel:            envDefault("LOG_LEVEL", "info"),
		AuthMode:            os.Getenv("AUTH_MODE"),
		AuthJWTSecret:       os.Getenv("AUTH_JWT_SECRET"),
		AuthAudience:        envDefault("AUTH_AUDIENCE", "authenticated"),
		AuthClockSkewSecs:   envIntDefault("AUTH_CLOCK_SKEW_SECONDS", 60),
		AdminAPIKey:         os.Getenv("ADMIN_API_KEY"),
		PolicyBundlePath:    os.Getenv("POLICY_BUNDLE_PATH"),
		RateLimitFailClosed: envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RateLimitMaxKeys:    envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             envIntDefault("REDIS_DB", 0),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceStarter:  os.Getenv("STRIPE_PRICE_STARTER"),
		StripePricePractice: os.Getenv("STRIPE_PRICE_PRACTICE"),
		StripePriceFirm:     os.Getenv("STRIPE_PRICE_FIRM"),
		ScannerURL:          os.Getenv("SCANNER_URL"),
		ScannerAPIKey:       os.Getenv("SCANNER_API_KEY"),
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnalysisModel:       envDefault("ANALYSIS_MODEL", "claude-sonnet-4-20250514"),
		PDFServiceURL:       os.Getenv("PDF_SERVICE_URL"),
		PDFServiceSecret:    os.Getenv("PDF_SERVICE_SECRET"),
		InviteTTLHours:      envIntDefault("INVITE_TTL_HOURS", 168),
	}
}

func (c Config) InviteTTL() time.Duration {
	if c.InviteTTLHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(c.InviteTTLHours) * time.Hour
}

func (c Config) AuthClockSkew() time.Duration {
	if c.AuthClockSkewSecs <= 0 {
		return 0
	}
	return time.Duration(c.AuthClockSkewSecs) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
