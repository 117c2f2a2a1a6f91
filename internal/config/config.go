package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Database
	MongoURI string
	DBName   string

	// Security
	JWTSecret   string
	TokenExpiry time.Duration

	// Movie metadata
	RedisAddr     string
	RedisPassword string
	TMDBAPIKey    string
	TMDBBaseURL   string

	// Payments
	PayPalClientID     string
	PayPalClientSecret string
	PayPalMode         string
	PremiumPrice       string
	PremiumCurrency    string
	FrontendURL        string

	CORSOrigins       []string
	ReconcileSchedule string
}

// LoadConfig reads a .env file if present and falls back to defaults.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using process environment")
	}

	expiry, err := time.ParseDuration(getEnv("TOKEN_EXPIRY", "24h"))
	if err != nil {
		logrus.WithError(err).Warn("Invalid TOKEN_EXPIRY, defaulting to 24h")
		expiry = 24 * time.Hour
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("DB_NAME", "cometa_films"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: expiry,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		TMDBAPIKey:    getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),

		PayPalClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
		PayPalClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
		PayPalMode:         getEnv("PAYPAL_MODE", "sandbox"),
		PremiumPrice:       getEnv("PREMIUM_PRICE", "5.99"),
		PremiumCurrency:    getEnv("PREMIUM_CURRENCY", "EUR"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),

		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "0 3 * * *"),
	}
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
