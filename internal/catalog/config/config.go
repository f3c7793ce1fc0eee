// Package config defines the catalog service configuration.
package config

import (
	"strings"

	"github.com/belos/catalog/pkg/config"
	"github.com/belos/catalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer     config.HTTPConfig           `koanf:"server"`
	Database       config.DatabaseConfig       `koanf:"database"`
	Log            config.LogConfig            `koanf:"log"`
	PProf          config.PProfConfig          `koanf:"pprof"`
	GRPC           config.GrpcServerConfig     `koanf:"grpc"`
	Shutdown       config.ShutdownConfig       `koanf:"shutdown"`
	Telemetry      config.TelemetryConfig      `koanf:"telemetry"`
	Metrics        config.MetricsConfig        `koanf:"metrics"`
	NATS           config.NATSConfig           `koanf:"nats"`
	CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
	Health         config.HealthConfig         `koanf:"health"`
}

// String renders every section. Database credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Metrics.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.CircuitBreaker.String())
	b.WriteString(c.Health.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.GRPC,
		&c.Shutdown,
		&c.Telemetry,
		&c.Metrics,
		&c.NATS,
		&c.CircuitBreaker,
		&c.Health,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
