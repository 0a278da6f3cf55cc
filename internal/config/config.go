package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration. Everything is read once at
// process start; there is no hot reload.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string
	FrontendURL string

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTTokenSecret   string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OpenAI OpenAIConfig
	Stripe StripeConfig
	SMTP   SMTPConfig
	OAuth  OAuthConfig

	IntegrationSecret string

	// SeedAdmin provisions a default admin account on startup. Meant
	// for local and self-hosted installs.
	SeedAdmin bool
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string

	PriceSMBBasic     string
	PriceSMBPro       string
	PriceAdvisorBasic string
	PriceAdvisorPro   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	MicrosoftClientID  string
	QuickBooksClientID string
}

// Load loads configuration from environment variables and an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "advisorhub"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		FrontendURL: getenv("FRONTEND_URL", "http://localhost:3000"),

		JWTAccessSecret:  strings.TrimSpace(getenv("JWT_ACCESS_SECRET", "")),
		JWTRefreshSecret: strings.TrimSpace(getenv("JWT_REFRESH_SECRET", "")),
		JWTTokenSecret:   strings.TrimSpace(getenv("JWT_SECRET", "")),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "advisorhub"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		OpenAI: OpenAIConfig{
			APIKey:      strings.TrimSpace(getenv("OPENAI_API_KEY", "")),
			BaseURL:     getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getenv("OPENAI_MODEL", "gpt-4-turbo-preview"),
			MaxTokens:   getenvInt("OPENAI_MAX_TOKENS", 2000),
			Temperature: getenvFloat("OPENAI_TEMPERATURE", 0.7),
		},
		Stripe: StripeConfig{
			SecretKey:         strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
			WebhookSecret:     strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),
			BaseURL:           getenv("STRIPE_API_BASE", "https://api.stripe.com"),
			PriceSMBBasic:     getenv("STRIPE_PRICE_SMB_BASIC", "price_smb_basic"),
			PriceSMBPro:       getenv("STRIPE_PRICE_SMB_PRO", "price_smb_pro"),
			PriceAdvisorBasic: getenv("STRIPE_PRICE_ADVISOR_BASIC", "price_advisor_basic"),
			PriceAdvisorPro:   getenv("STRIPE_PRICE_ADVISOR_PRO", "price_advisor_pro"),
		},
		SMTP: SMTPConfig{
			Host:     getenv("EMAIL_HOST", ""),
			Port:     getenvInt("EMAIL_PORT", 587),
			Username: getenv("EMAIL_USER", ""),
			Password: getenv("EMAIL_PASS", ""),
			From:     getenv("EMAIL_FROM", "noreply@advisorhub.dev"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
			MicrosoftClientID:  getenv("MICROSOFT_CLIENT_ID", ""),
			QuickBooksClientID: getenv("QUICKBOOKS_CLIENT_ID", ""),
		},

		IntegrationSecret: strings.TrimSpace(getenv("INTEGRATION_SECRET", "")),

		SeedAdmin: getenvBool("SEED_ADMIN", false),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

// Module provides the loaded configuration to the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
)
