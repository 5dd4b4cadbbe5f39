package config

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionCacheConfig configuration for the pool of vendor sessions
type SessionCacheConfig struct {
	// Lifespan of an unused session before it gets closed
	Lifespan Duration `yaml:"lifespan" default:"5m"`
	// Probe checks if a pooled session is still alive before reusing it
	Probe bool `yaml:"probe" default:"true"`
	// DisposeTimeout limits the time to close an evicted session
	DisposeTimeout Duration `yaml:"disposeTimeout" default:"5s"`
}

// IsEnabled implements `config.Configurable`.
func (c *SessionCacheConfig) IsEnabled() bool {
	return true
}

// LogConfig implements `config.Configurable`.
func (c *SessionCacheConfig) LogConfig(logger *logrus.Entry) {
	logger.Infof("lifespan = %s", c.Lifespan)
	logger.Infof("probe = %t", c.Probe)
	logger.Infof("disposeTimeout = %s", c.DisposeTimeout)
}

func (c *SessionCacheConfig) validate() error {
	if c.Lifespan.IsAboveZero() && c.Lifespan.ToDuration() < 100*time.Millisecond {
		return errors.New("sessionCache.lifespan must be at least 100ms")
	}

	if !c.DisposeTimeout.IsAboveZero() {
		return errors.New("sessionCache.disposeTimeout must be above zero")
	}

	return nil
}
