package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// PublicBaseURL is where this API is reachable from the outside; it is
	// the base for generated upload URLs. ClientBaseURL is the customer-facing
	// frontend used for checkout redirects.
	PublicBaseURL string
	ClientBaseURL string

	// AdminToken guards the analyst/admin surface. There is no default: when
	// unset the admin routes reject every request.
	AdminToken string

	// CaseStoreBackend selects the case persistence implementation:
	// "db" (relational via gorm) or "file" (flat JSON file).
	CaseStoreBackend string
	CaseFilePath     string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	UploadDir      string
	MaxUploadBytes int64

	StripeSecretKey     string
	StripeWebhookSecret string

	// CatalogPath optionally points at a yaml file overriding the built-in
	// package catalog and requirement sets. Hot-reloaded on change.
	CatalogPath string

	RedisAddr          string
	RateLimitRequests  int
	RateLimitWindowSec int
}

const (
	StoreBackendDB   = "db"
	StoreBackendFile = "file"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "riskintel"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":3001"),

		PublicBaseURL: strings.TrimRight(getenv("SERVER_URL", "http://localhost:3001"), "/"),
		ClientBaseURL: strings.TrimRight(getenv("CLIENT_URL", "http://localhost:3000"), "/"),

		AdminToken: strings.TrimSpace(os.Getenv("ADMIN_SECRET_TOKEN")),

		CaseStoreBackend: normalizeBackend(getenv("CASE_STORE", StoreBackendDB)),
		CaseFilePath:     getenv("CASE_FILE_PATH", "data/cases.json"),

		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "riskintel"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),

		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: getenvInt64("MAX_UPLOAD_BYTES", 5<<20),

		StripeSecretKey:     strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		StripeWebhookSecret: strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),

		CatalogPath: strings.TrimSpace(os.Getenv("CATALOG_PATH")),

		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RateLimitRequests:  getenvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindowSec: getenvInt("RATE_LIMIT_WINDOW_SEC", 900),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) AdminEnabled() bool {
	return c.AdminToken != ""
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StoreBackendFile, "json":
		return StoreBackendFile
	default:
		return StoreBackendDB
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

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

var Module = fx.Module("config", fx.Provide(Load))
