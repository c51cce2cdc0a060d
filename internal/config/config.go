package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Generator providers understood by GENERATOR_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	Port         string
	DatabasePath string
	LogLevel     string
	LogFormat    string

	// Generation gateway
	GeneratorProvider string
	GeminiAPIKey      string
	GeminiModel       string
	GroqAPIKey        string
	GroqModel         string

	// Session gateway
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	SessionSecret      string
	SessionTTL         time.Duration

	// Telegram Config
	TelegramBotToken   string
	TelegramWebhookURL string
	// TelegramUsers links an allowed Telegram user id to an application uid.
	TelegramUsers   map[int64]string
	AdminTelegramID int64
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding the ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// NewFromEnv creates a new Config object from environment variables.
//
// Missing credentials are not an error here: Missing reports them so the
// web server can render its configuration screen. Malformed values are.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "data/comida.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		GeneratorProvider:  strings.ToLower(getEnv("GENERATOR_PROVIDER", ProviderGemini)),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqModel:          getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/auth/callback"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	switch cfg.GeneratorProvider {
	case ProviderGemini, ProviderGroq:
	default:
		return nil, fmt.Errorf("GENERATOR_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderGroq, cfg.GeneratorProvider)
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	users, err := parseTelegramUsers(os.Getenv("TELEGRAM_ALLOWED_USERS"))
	if err != nil {
		return nil, err
	}
	cfg.TelegramUsers = users

	if v := os.Getenv("TELEGRAM_ADMIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_ID: %w", err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

// Missing lists the credential variables required by the web application
// that are not set.
func (c *Config) Missing() []string {
	var missing []string
	check := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	check("GOOGLE_CLIENT_ID", c.GoogleClientID)
	check("GOOGLE_CLIENT_SECRET", c.GoogleClientSecret)
	check("SESSION_SECRET", c.SessionSecret)
	if c.GeneratorProvider == ProviderGroq {
		check("GROQ_API_KEY", c.GroqAPIKey)
	} else {
		check("GEMINI_API_KEY", c.GeminiAPIKey)
	}
	return missing
}

// Configured reports whether both the session and generation gateways have
// credentials.
func (c *Config) Configured() bool {
	return len(c.Missing()) == 0
}

// SecureCookies reports whether the app is served over https, judged by
// the OAuth redirect address.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.OAuthRedirectURL, "https://")
}

// parseTelegramUsers parses "tgID:uid,tgID:uid".
func parseTelegramUsers(raw string) (map[int64]string, error) {
	users := make(map[int64]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idStr, uid, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(uid) == "" {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USERS entry %q: expected telegramID:uid", pair)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid telegram id in %q: %w", pair, err)
		}
		users[id] = strings.TrimSpace(uid)
	}
	return users, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
