// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"
	"github.com/joho/godotenv"

	customValidation "github.com/allisson/vau/internal/validation"
)

// Supported pseudonym store drivers.
const (
	PseudonymStoreMemory   = "memory"
	PseudonymStoreSQLite   = "sqlite"
	PseudonymStorePostgres = "postgres"
	PseudonymStoreMySQL    = "mysql"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the local proxy will bind to.
	ServerHost string
	// ServerPort is the port number the local proxy will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// VAUServerURL is the base URL of the trusted execution environment (requests go to {url}/VAU/{pseudonym}).
	VAUServerURL string
	// VAUUpstreamURL is the base URL used for the inner (encrypted) requests. Defaults to VAUServerURL.
	VAUUpstreamURL string
	// VAUCertificatePath optionally points to a PEM or DER file holding the VAU encryption certificate.
	// When empty the certificate is fetched from {VAUServerURL}/VAUCertificate.
	VAUCertificatePath string
	// VAUCertificateCacheTTL is how long a fetched VAU certificate is reused.
	VAUCertificateCacheTTL time.Duration
	// VAUBearerToken is the fallback bearer token used when a request carries no Authorization header.
	VAUBearerToken string
	// VAURequestTimeout bounds a single round trip to the VAU server.
	VAURequestTimeout time.Duration

	// PseudonymStore selects where the user pseudonym is persisted ("memory", "sqlite", "postgres", "mysql").
	PseudonymStore string
	// PseudonymKey namespaces the stored pseudonym; defaults to the VAU server URL.
	PseudonymKey string

	// DBConnectionString is the connection string for the pseudonym database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// KMSKeyURI enables at-rest encryption of stored pseudonyms when set
	// (e.g., "base64key://...", "awskms:///alias/...", "hashivault://...").
	KMSKeyURI string

	// RateLimitEnabled indicates whether rate limiting of the local proxy is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per remote address.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	vauServerURL := env.GetString("VAU_SERVER_URL", "http://localhost:9443")

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "127.0.0.1"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// VAU
		VAUServerURL:           vauServerURL,
		VAUUpstreamURL:         env.GetString("VAU_UPSTREAM_URL", vauServerURL),
		VAUCertificatePath:     env.GetString("VAU_CERTIFICATE_PATH", ""),
		VAUCertificateCacheTTL: env.GetDuration("VAU_CERTIFICATE_CACHE_TTL_SECONDS", 3600, time.Second),
		VAUBearerToken:         env.GetString("VAU_BEARER_TOKEN", ""),
		VAURequestTimeout:      env.GetDuration("VAU_REQUEST_TIMEOUT_SECONDS", 30, time.Second),

		// Pseudonym storage
		PseudonymStore: env.GetString("PSEUDONYM_STORE", PseudonymStoreMemory),
		PseudonymKey:   env.GetString("PSEUDONYM_KEY", vauServerURL),

		// Database configuration
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", "file:vau.db"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 10),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 2),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// KMS
		KMSKeyURI: env.GetString("KMS_KEY_URI", ""),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "vau"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.VAUServerURL, validation.Required, customValidation.NotBlank, is.URL),
		validation.Field(&c.VAUUpstreamURL, validation.Required, customValidation.NotBlank, is.URL),
		validation.Field(&c.VAURequestTimeout, validation.Required),
		validation.Field(&c.PseudonymStore,
			validation.Required,
			validation.In(
				PseudonymStoreMemory,
				PseudonymStoreSQLite,
				PseudonymStorePostgres,
				PseudonymStoreMySQL,
			),
		),
		validation.Field(&c.PseudonymKey, validation.Required),
		validation.Field(&c.DBConnectionString,
			validation.When(c.PseudonymStore != PseudonymStoreMemory, validation.Required),
		),
		validation.Field(&c.MetricsNamespace, validation.When(c.MetricsEnabled, validation.Required)),
	)
	return customValidation.WrapValidationError(err)
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
