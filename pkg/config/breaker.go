package config

import (
	"fmt"
	"strings"
	"time"
)

// CircuitBreakerConfig tunes the breaker guarding the product store.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	MaxRequests         uint32        `koanf:"maxrequests"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

// String returns a string representation of the CircuitBreakerConfig.
func (c *CircuitBreakerConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Circuit Breaker ---\n")
	b.WriteString(fmt.Sprintf("  circuitbreaker.consecutivefailures: %d\n", c.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  circuitbreaker.errorratepercent: %d\n", c.ErrorRatePercent))
	b.WriteString(fmt.Sprintf("  circuitbreaker.maxrequests: %d\n", c.MaxRequests))
	b.WriteString(fmt.Sprintf("  circuitbreaker.opentimeout: %v\n", c.OpenTimeout))
	return b.String()
}

func (c *CircuitBreakerConfig) Validate() error {
	if c.ConsecutiveFailures == 0 {
		return fmt.Errorf("circuitbreaker.consecutivefailures must be greater than 0")
	}
	if c.ErrorRatePercent < 0 || c.ErrorRatePercent > 100 {
		return fmt.Errorf("circuitbreaker.errorratepercent must be between 0 and 100")
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("circuitbreaker.opentimeout must be greater than 0")
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = 1
	}
	return nil
}
