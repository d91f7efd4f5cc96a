package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	// Remote libSQL database (optional, takes precedence over DBPath)
	TursoDatabaseURL string
	TursoAuthToken   string
	// Backend platform
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	// S3-compatible object storage (documents bucket)
	StorageEndpoint        string
	StorageRegion          string
	StorageAccessKeyID     string
	StorageSecretAccessKey string
	StorageBucket          string
	StoragePublicURL       string
	// LLM providers
	MistralAPIKey    string
	GroqAPIKey       string
	OpenAIAPIKey     string
	ClaudeAPIKey     string
	AIProvidersFile  string
	AIRetryBaseDelay time.Duration
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged instead of sent
	// Other
	AllowedOrigins []string
	AppURL         string
	WebhookSecret  string
	UploadPause    time.Duration
	ChromePath     string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		DBPath:                 getEnv("DB_PATH", "db/app.db"),
		Environment:            getEnv("ENVIRONMENT", "development"),
		UploadDir:              getEnv("UPLOAD_DIR", "uploads"),
		TursoDatabaseURL:       getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:         getEnv("TURSO_AUTH_TOKEN", ""),
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		StorageEndpoint:        getEnv("STORAGE_ENDPOINT", ""),
		StorageRegion:          getEnv("STORAGE_REGION", "auto"),
		StorageAccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID", ""),
		StorageSecretAccessKey: getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
		StorageBucket:          getEnv("STORAGE_BUCKET", "documents"),
		StoragePublicURL:       getEnv("STORAGE_PUBLIC_URL", ""),
		MistralAPIKey:          getEnv("MISTRAL_API_KEY", ""),
		GroqAPIKey:             getEnv("GROQ_API_KEY", ""),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		ClaudeAPIKey:           getEnv("CLAUDE_API_KEY", ""),
		AIProvidersFile:        getEnv("AI_PROVIDERS_FILE", ""),
		AIRetryBaseDelay:       getEnvDuration("AI_RETRY_BASE_DELAY", time.Second),
		ResendAPIKey:           getEnv("RESEND_API_KEY", ""),
		EmailFrom:              getEnv("EMAIL_FROM", "noreply@reclamassur.fr"),
		EmailFromName:          getEnv("EMAIL_FROM_NAME", "ReclamAssur"),
		EmailTestMode:          getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		AllowedOrigins:         strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:                 getEnv("APP_URL", "http://localhost:8080"),
		WebhookSecret:          getEnv("WEBHOOK_SECRET", ""),
		UploadPause:            getEnvDuration("UPLOAD_PAUSE", 300*time.Millisecond),
		ChromePath:             getEnv("CHROME_PATH", ""),
	}
}

// IsProduction reports whether the app runs with ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// StorageConfigured reports whether S3-compatible storage credentials are complete
func (c *Config) StorageConfigured() bool {
	return c.StorageEndpoint != "" && c.StorageAccessKeyID != "" && c.StorageSecretAccessKey != "" && c.StorageBucket != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("invalid duration, using default", zap.String("key", key), zap.String("value", value))
		return defaultValue
	}
	return d
}
