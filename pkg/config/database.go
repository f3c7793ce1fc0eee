package config

import (
	"fmt"
	"strings"
	"time"
)

// DatabaseConfig describes the PostgreSQL connection used by the catalog store.
type DatabaseConfig struct {
	URL          string        `koanf:"url"`
	Timeout      time.Duration `koanf:"timeout"`
	QueryTimeout time.Duration `koanf:"queryTimeout"`
	MaxConns     int32         `koanf:"maxConns"`
	Migrate      bool          `koanf:"migrate"`
}

const defaultQueryTimeout = 5 * time.Second

// String returns a string representation of the database configuration with credentials masked.
func (c *DatabaseConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Database ---\n")
	b.WriteString(fmt.Sprintf("  database.url: %s\n", MaskURL(c.URL)))
	b.WriteString(fmt.Sprintf("  database.timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  database.queryTimeout: %s\n", c.QueryTimeout))
	b.WriteString(fmt.Sprintf("  database.maxConns: %d\n", c.MaxConns))
	b.WriteString(fmt.Sprintf("  database.migrate: %t\n", c.Migrate))
	return b.String()
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !isValidPostgresURL(c.URL) {
		return fmt.Errorf("database URL must start with 'postgres://': %s", MaskURL(c.URL))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("database connect timeout is not configured")
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("database max connections must not be negative: %d", c.MaxConns)
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = defaultQueryTimeout
	}
	return nil
}

// MaskURL hides the user info part of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return "****"
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}
