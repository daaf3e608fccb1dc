// Package config loads runtime settings from the environment.
//
// SOURCES, IN ORDER:
//  1. A ".env" file in the working directory, if one exists (godotenv).
//     Variables already present in the real environment are NOT overridden.
//  2. The process environment.
//  3. Hardcoded defaults (see Load).
//
// The older hosting setup exported MYSQL_ADDON_* variables, so every DB_*
// setting falls back to its MYSQL_ADDON_* counterpart before the default.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Listing modes for GET /users.
const (
	// ListOpposite returns only users of the opposite gender to the requester.
	ListOpposite = "opposite"
	// ListAll returns every user with no filter.
	ListAll = "all"
)

// Image store backends.
const (
	ImageStoreLocal = "local"
	ImageStoreS3    = "s3"
)

// Config holds every setting the server needs.
type Config struct {
	HTTP struct {
		Host string
		Port int
	}

	DB struct {
		Driver   string
		DSN      string // takes precedence over the individual fields
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		Path     string // sqlite only
		PoolSize int
		// Strict makes ping/schema failures at startup fatal.
		Strict bool
	}

	Redis struct {
		Addr     string // empty disables the like counter cache
		Password string
		DB       int
	}

	Images struct {
		Store          string
		UploadDir      string
		MaxUploadBytes int64
		S3Bucket       string
		S3Prefix       string
		AWSRegion      string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	StaticDir   string
	ListMode    string
	CORSOrigins []string
}

// Load reads configuration from .env (when present) and the environment.
// It never fails; call Validate to check the result.
func Load() *Config {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	cfg := &Config{}

	cfg.HTTP.Host = getEnvDefault("HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvInt("PORT", 3000)

	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", DriverMySQL))
	cfg.DB.DSN = firstEnv("DB_DSN", "DATABASE_URL")
	cfg.DB.Host = getEnvDefault("DB_HOST", getEnvDefault("MYSQL_ADDON_HOST", "localhost"))
	cfg.DB.User = getEnvDefault("DB_USER", getEnvDefault("MYSQL_ADDON_USER", "root"))
	cfg.DB.Password = getEnvDefault("DB_PASSWORD", os.Getenv("MYSQL_ADDON_PASSWORD"))
	cfg.DB.Name = getEnvDefault("DB_NAME", getEnvDefault("MYSQL_ADDON_DB", "lyon_db"))
	cfg.DB.Port = getEnvDefault("DB_PORT", getEnvDefault("MYSQL_ADDON_PORT", defaultPort(cfg.DB.Driver)))
	cfg.DB.Path = getEnvDefault("DB_PATH", "data/matchboard.db")
	cfg.DB.PoolSize = getEnvInt("DB_POOL_SIZE", 10)
	cfg.DB.Strict = isTruthy(os.Getenv("SCHEMA_STRICT"))

	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Images.Store = strings.ToLower(getEnvDefault("IMAGE_STORE", ImageStoreLocal))
	cfg.Images.UploadDir = getEnvDefault("UPLOAD_DIR", "public/uploads")
	cfg.Images.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20))
	cfg.Images.S3Bucket = getEnvDefault("S3_BUCKET_NAME", "")
	cfg.Images.S3Prefix = getEnvDefault("S3_PREFIX", "profile-pics/")
	cfg.Images.AWSRegion = getEnvDefault("AWS_REGION", "")

	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "matchboard")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	cfg.StaticDir = getEnvDefault("STATIC_DIR", "public")
	cfg.ListMode = strings.ToLower(getEnvDefault("LIST_MODE", ListOpposite))
	cfg.CORSOrigins = splitList(getEnvDefault("CORS_ALLOWED_ORIGINS", "*"))

	return cfg
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// DataSourceName returns the driver-specific connection string.
// An explicit DSN always wins.
func (c *Config) DataSourceName() string {
	if c.DB.DSN != "" {
		return c.DB.DSN
	}
	switch c.DB.Driver {
	case DriverPostgres:
		return c.postgresURL()
	case DriverSQLite:
		return c.DB.Path
	default:
		// parseTime lets the driver scan DATETIME/TIMESTAMP into time.Time.
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
	}
}

// postgresURL builds a postgres:// URL so empty values and passwords with
// spaces or quotes survive; a key=value string would need quoting by hand.
func (c *Config) postgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.DB.Host, c.DB.Port),
		Path:     "/" + c.DB.Name,
		RawQuery: "sslmode=disable",
	}
	if c.DB.Password != "" {
		u.User = url.UserPassword(c.DB.User, c.DB.Password)
	} else {
		u.User = url.User(c.DB.User)
	}
	return u.String()
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DB.Driver))
	}
	if c.DB.PoolSize <= 0 {
		errs = append(errs, fmt.Errorf("DB_POOL_SIZE must be positive, got %d", c.DB.PoolSize))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, errors.New("REDIS_DB must be a non-negative integer"))
	}
	switch c.ListMode {
	case ListOpposite, ListAll:
	default:
		errs = append(errs, fmt.Errorf("LIST_MODE %q is not supported", c.ListMode))
	}
	switch c.Images.Store {
	case ImageStoreLocal:
	case ImageStoreS3:
		if c.Images.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET_NAME is required when IMAGE_STORE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("IMAGE_STORE %q is not supported", c.Images.Store))
	}
	if c.Images.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Images.MaxUploadBytes))
	}

	return errors.Join(errs...)
}

func defaultPort(driver string) string {
	if driver == DriverPostgres {
		return "5432"
	}
	return "3306"
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// getEnvInt returns -1 for unparsable values so Validate can reject them.
func getEnvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
