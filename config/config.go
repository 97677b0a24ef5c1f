package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	FrontendURL string
	SiteName    string
	// Extra allowed CORS origins besides FrontendURL
	CORSOrigins   []string
	SecureCookies bool
	// Store Configuration
	StoreDriver         string // memory, firebase, postgres, mongo
	StoreTimeoutSeconds int
	DBUrl               string
	MongoURI            string
	MongoDatabase       string
	FirebaseDatabaseURL string
	FirebaseCredentials string // Path to service account JSON
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Identity Provider (Google)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleJWKSURL      string
	// Sessions
	SessionSecret       string
	SessionTTLMinutes   int
	AuthTimeoutSeconds  int
	RoleCacheTTLMinutes int
	// Authorization: the admin allow-list is the whole admin model
	AdminEmails []string
	// Outbound WhatsApp links
	WhatsAppCountryCode string
	// SMTP Configuration (contact form forwarding, optional)
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	ContactEmailTo string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally; ignored in production when the file is absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),
		// Strip trailing slash to prevent double slashes when building URLs
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		SiteName:    getEnv("SITE_NAME", "Flowrk.in"),
		CORSOrigins: getEnvList("CORS_ORIGINS"),
		// Store
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", "memory")),
		StoreTimeoutSeconds: getEnvInt("STORE_TIMEOUT_SECONDS", 5),
		DBUrl:               getEnv("DATABASE_URL", ""),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "flowrk"),
		FirebaseDatabaseURL: strings.TrimRight(getEnv("FIREBASE_DATABASE_URL", ""), "/"),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Google
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5173/auth/callback"),
		GoogleJWKSURL:      getEnv("GOOGLE_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs"),
		// Sessions
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		SessionTTLMinutes:   getEnvInt("SESSION_TTL_MINUTES", 7*24*60), // 7 days
		AuthTimeoutSeconds:  getEnvInt("AUTH_TIMEOUT_SECONDS", 5),
		RoleCacheTTLMinutes: getEnvInt("ROLE_CACHE_TTL_MINUTES", 60),
		AdminEmails:         getEnvList("ADMIN_EMAILS"),
		WhatsAppCountryCode: getEnv("WHATSAPP_COUNTRY_CODE", "91"),
		// SMTP
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		ContactEmailTo: getEnv("CONTACT_EMAIL_TO", "support@flowrk.in"),
		// Rate Limiting
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
	}

	cfg.SecureCookies = getEnvBool("COOKIE_SECURE", cfg.GinMode == "release")

	if cfg.SessionSecret == "" {
		log.Println("WARNING: SESSION_SECRET is missing. Sessions will be signed with an insecure development key.")
		cfg.SessionSecret = "dev-insecure-session-secret"
	}

	if cfg.GoogleClientID == "" {
		log.Println("WARNING: GOOGLE_CLIENT_ID not configured. Google sign-in will fail.")
	}

	if len(cfg.AdminEmails) == 0 {
		log.Println("WARNING: ADMIN_EMAILS is empty. Nobody can use the admin console.")
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Role cache, session revocation and rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated environment variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
