package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort    string
	DatabaseURL string
	WhatsApp    WhatsAppConfig
	Webhook     WebhookConfig
	Dashboard   DashboardConfig
	Cache       CacheConfig
}

// WhatsAppConfig carries the Cloud API credentials. The fields are validated
// lazily by the provider client so a read-only deployment (dashboard without
// send capability) can still boot.
type WhatsAppConfig struct {
	APIBaseURL        string
	PhoneNumberID     string
	AccessToken       string
	BusinessAccountID string
	// BusinessNumber is the display phone number of the business, recorded as
	// the sender on outbound rows. Distinct from PhoneNumberID, which is the
	// provider's opaque id for the same number.
	BusinessNumber string
}

type WebhookConfig struct {
	VerifyToken string
}

type DashboardConfig struct {
	MessageFetchLimit int
	AllowedOrigins    []string
}

// CacheConfig configures the optional Redis analytics snapshot.
// An empty Addr disables caching entirely.
type CacheConfig struct {
	Addr string
	TTL  time.Duration
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.")
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		log.Fatal("FATAL: DATABASE_URL environment variable is not set.")
	}

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseURL: dbURL,
		WhatsApp: WhatsAppConfig{
			APIBaseURL:        getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v21.0"),
			PhoneNumberID:     getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			AccessToken:       getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			BusinessAccountID: getEnv("WHATSAPP_BUSINESS_ACCOUNT_ID", ""),
			BusinessNumber:    getEnv("WHATSAPP_BUSINESS_NUMBER", ""),
		},
		Webhook: WebhookConfig{
			VerifyToken: getEnv("WEBHOOK_VERIFY_TOKEN", ""),
		},
		Dashboard: DashboardConfig{
			MessageFetchLimit: getEnvInt("MESSAGE_FETCH_LIMIT", 1000),
			AllowedOrigins:    []string{getEnv("DASHBOARD_ORIGIN", "http://localhost:3000"), "http://localhost:5173"},
		},
		Cache: CacheConfig{
			Addr: getEnv("REDIS_ADDR", ""),
			TTL:  time.Duration(getEnvInt("REDIS_TTL_SECONDS", 60)) * time.Second,
		},
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, FetchLimit=%d, CacheEnabled=%t",
		cfg.HTTPPort, cfg.Dashboard.MessageFetchLimit, cfg.Cache.Addr != "")

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return n
}
