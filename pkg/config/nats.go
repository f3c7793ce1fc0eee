package config

import (
	"fmt"
	"strings"
	"time"
)

// NATSConfig describes the JetStream connection used to publish domain events.
// Publishing is skipped entirely when Enabled is false.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Stream  string        `koanf:"stream"`
}

const defaultStream = "PRODUCTS"

// String returns a string representation of the NATS configuration.
func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  nats.enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  nats.url: %s\n", c.Url))
	b.WriteString(fmt.Sprintf("  nats.timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  nats.stream: %s\n", c.Stream))
	return b.String()
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Url == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats dial timeout is not configured")
	}
	if c.Stream == "" {
		c.Stream = defaultStream
	}
	return nil
}
