// Package endpoint composes the per-request upload URL.
package endpoint

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/radif/uploader/internal/identifier"
)

const (
	DefaultScheme     = "http"
	DefaultHost       = "localhost"
	DefaultPort       = 3000
	DefaultPathPrefix = "/backend/upload/"
)

// Config describes where the backend lives.
type Config struct {
	Scheme     string
	Host       string
	Port       int
	PathPrefix string
}

// Default returns the configuration of a backend on localhost:3000.
func Default() Config {
	return Config{
		Scheme:     DefaultScheme,
		Host:       DefaultHost,
		Port:       DefaultPort,
		PathPrefix: DefaultPathPrefix,
	}
}

// Validate reports whether the configuration can produce URLs.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Scheme {
	case "", "http", "https":
	default:
		return fmt.Errorf("unsupported scheme %q", c.Scheme)
	}
	return nil
}

// Builder turns a Config plus a fresh identifier into a target URL.
type Builder struct {
	base string
	ids  identifier.Generator
}

// NewBuilder validates cfg and returns a Builder drawing identifiers from ids.
// A nil ids falls back to identifier.Pattern.
func NewBuilder(cfg Config, ids identifier.Generator) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoint config: %w", err)
	}
	if ids == nil {
		ids = identifier.Pattern{}
	}

	scheme := cfg.Scheme
	if scheme == "" {
		scheme = DefaultScheme
	}

	return &Builder{
		base: scheme + "://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)) + normalizePrefix(cfg.PathPrefix),
		ids:  ids,
	}, nil
}

// Build returns a new URL and the identifier embedded as its last path segment.
// Every call draws a new identifier.
func (b *Builder) Build() (url, id string) {
	id = b.ids.Next()
	return b.base + id, id
}

// Base returns the URL without the identifier.
func (b *Builder) Base() string {
	return b.base
}

// normalizePrefix makes the prefix start and end with a slash.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "/"
	}
	return "/" + prefix + "/"
}
