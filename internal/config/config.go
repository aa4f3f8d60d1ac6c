// Package config loads uploader configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/radif/uploader/internal/endpoint"
	"github.com/radif/uploader/internal/logger"
)

// ErrInvalid wraps every validation failure returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration for the uploader.
type Config struct {
	// Backend location
	Scheme     string `validate:"oneof=http https"`
	Host       string `validate:"required,hostname_rfc1123|ip"`
	Port       int    `validate:"min=1,max=65535"`
	PathPrefix string

	Policy   string        `validate:"oneof=strict permissive"`
	IDFormat string        `validate:"oneof=pattern uuid xid"`
	Timeout  time.Duration `validate:"min=0"` // 0 leaves cancellation to the caller

	LogLevel      string
	LogFile       string // empty logs to stderr only
	LogMaxSize    int    `validate:"min=0"` // MB
	LogMaxBackups int    `validate:"min=0"`
	LogMaxAge     int    `validate:"min=0"` // days
	LogCompress   bool
}

var validate = validator.New()

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}
	return FromEnv()
}

// FromEnv reads configuration from the current environment only.
func FromEnv() *Config {
	return &Config{
		Scheme:     getEnv("UPLOAD_SCHEME", endpoint.DefaultScheme),
		Host:       getEnv("UPLOAD_HOST", endpoint.DefaultHost),
		Port:       getEnvInt("UPLOAD_PORT", endpoint.DefaultPort),
		PathPrefix: getEnv("UPLOAD_PATH_PREFIX", endpoint.DefaultPathPrefix),

		Policy:   getEnv("UPLOAD_POLICY", "strict"),
		IDFormat: getEnv("UPLOAD_ID_FORMAT", "pattern"),
		Timeout:  time.Duration(getEnvInt("UPLOAD_TIMEOUT", 0)) * time.Second,

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Endpoint returns the backend location part of the configuration.
func (c *Config) Endpoint() endpoint.Config {
	return endpoint.Config{
		Scheme:     c.Scheme,
		Host:       c.Host,
		Port:       c.Port,
		PathPrefix: c.PathPrefix,
	}
}

// IsPermissive returns true when non-2xx responses should not be treated as errors.
func (c *Config) IsPermissive() bool {
	return c.Policy == "permissive"
}

// NewLogger builds the logger described by the LOG_* settings.
func (c *Config) NewLogger() (*logger.Logger, error) {
	level := logger.ParseLevel(c.LogLevel)
	if c.LogFile == "" {
		return logger.New(os.Stderr, level), nil
	}
	return logger.NewWithFile(c.LogFile, level, logger.Rotation{
		MaxSize:    c.LogMaxSize,
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAge,
		Compress:   c.LogCompress,
	})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
