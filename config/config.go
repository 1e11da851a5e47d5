// config.go - Handles configuration for the project

package config // Declares the package name

import ( // Import required packages
	"fmt"     // For DSN formatting and errors
	"os"      // For reading environment variables
	"strconv" // For parsing boolean flags
	"strings" // For splitting list values

	"github.com/joho/godotenv" // Loads a local .env file into the environment
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct { // Config struct holds all configuration values
	Port string // HTTP listening port

	DBDriver      string // mysql, postgres or sqlite
	DBHost        string // Database host
	DBPort        string // Database port (driver default when empty)
	DBUser        string // Database user
	DBPassword    string // Database password (never defaulted)
	DBName        string // Database name, or file path for sqlite
	DBDSN         string // Full DSN, overrides the fields above when set
	DBAutoMigrate bool   // Create the users table on startup

	CORSAllowedOrigins []string // Allowed origins, "*" means all
	GinMode            string   // debug, release or test

	OTLPEndpoint string // OTLP/HTTP collector endpoint, tracing is off when empty
	OTLPHeaders  string // Exporter headers in "k=v,k=v" form
	ServiceName  string // Service name reported to the tracer
}

// Load reads config from an optional .env file and the environment, falling back to defaults.
func Load() *Config {
	_ = godotenv.Load() // A missing .env file is fine, real env vars still apply

	return &Config{
		Port: getEnv("PORT", "5000"), // Same port the service has always listened on

		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", ""),
		DBUser:        getEnv("DB_USER", "root"),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "tasla"),
		DBDSN:         getEnv("DB_DSN", ""),
		DBAutoMigrate: getBool("DB_AUTO_MIGRATE", false),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		GinMode:            getEnv("GIN_MODE", "debug"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPHeaders:  getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "email-login-backend"),
	}
}

// Validate checks the values that would otherwise fail late, on the first request.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config error: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.Port == "" {
		return fmt.Errorf("config error: PORT must not be empty")
	}
	if c.DBDSN == "" && c.DBName == "" {
		return fmt.Errorf("config error: DB_NAME or DB_DSN is required")
	}
	switch c.GinMode {
	case "", "debug", "release", "test": // gin.SetMode panics on anything else
	default:
		return fmt.Errorf("config error: unsupported GIN_MODE %q", c.GinMode)
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" { // Explicit DSN wins
		return c.DBDSN
	}
	switch c.DBDriver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, c.dbPortOr("5432"), c.DBUser, c.DBPassword, c.DBName)
	case DriverSQLite:
		return c.DBName // File path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			c.DBUser, c.DBPassword, c.DBHost, c.dbPortOr("3306"), c.DBName)
	}
}

// AllowsAllOrigins reports whether CORS should accept any origin.
func (c *Config) AllowsAllOrigins() bool {
	for _, o := range c.CORSAllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return len(c.CORSAllowedOrigins) == 0
}

func (c *Config) dbPortOr(fallback string) string {
	if c.DBPort != "" {
		return c.DBPort
	}
	return fallback
}

func getEnv(key, fallback string) string { // Helper to get env var or fallback
	if value := os.Getenv(key); value != "" { // If env var is set, use it
		return value
	}
	return fallback // Otherwise, use fallback value
}

func getBool(key string, fallback bool) bool { // Helper for boolean env vars
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback // Unset or unparsable
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
