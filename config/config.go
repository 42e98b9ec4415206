package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	LogFile           string `mapstructure:"LOG_FILE"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`

	// Persistence.
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`
	PostgresDSN    string `mapstructure:"POSTGRES_DSN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisAuthDB    int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Auth.
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	CookieSecure    bool   `mapstructure:"COOKIE_SECURE"`

	// Stripe and pricing. UNIT_PRICE is in minor units.
	StripeKey     string `mapstructure:"STRIPE_KEY"`
	StripePriceID string `mapstructure:"STRIPE_PRICE_ID"`
	UnitPrice     int64  `mapstructure:"UNIT_PRICE"`
	Currency      string `mapstructure:"CURRENCY"`

	CheckoutSessionTTLMinutes int    `mapstructure:"CHECKOUT_SESSION_TTL_MINUTES"`
	MailFrom                  string `mapstructure:"MAIL_FROM"`
}

var AppConfig Config

func LoadConfig() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DATABASE_DRIVER", "mongo")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "traceaq")
	viper.SetDefault("POSTGRES_DSN", "postgres://localhost:5432/traceaq?sslmode=disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_PRICE_ID", "")
	viper.SetDefault("UNIT_PRICE", 9800)
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("CHECKOUT_SESSION_TTL_MINUTES", 30)
	viper.SetDefault("MAIL_FROM", "Trace AQ <no-reply@traceaq.com>")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SessionTTL is the lifetime of a sign in session.
func SessionTTL() time.Duration {
	if AppConfig.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(AppConfig.SessionTTLHours) * time.Hour
}

// CheckoutSessionTTL is the sliding expiry of a checkout session.
func CheckoutSessionTTL() time.Duration {
	if AppConfig.CheckoutSessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(AppConfig.CheckoutSessionTTLMinutes) * time.Minute
}
