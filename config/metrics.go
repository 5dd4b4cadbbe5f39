package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// paths served by the router itself, the metrics handler must not shadow them
//
//nolint:gochecknoglobals
var reservedPathPrefixes = []string{"/api/", "/debug"}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Enable bool   `yaml:"enable" default:"false"`
	Path   string `yaml:"path" default:"/metrics"`
}

// IsEnabled implements `config.Configurable`.
func (c *MetricsConfig) IsEnabled() bool {
	return c.Enable
}

// LogConfig implements `config.Configurable`.
func (c *MetricsConfig) LogConfig(logger *logrus.Entry) {
	logger.Infof("path = %s", c.Path)
}

func (c *MetricsConfig) validate() error {
	if !c.IsEnabled() {
		return nil
	}

	if c.Path == "/" || !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("metrics.path '%s' must be an absolute path below '/'", c.Path)
	}

	for _, prefix := range reservedPathPrefixes {
		if strings.HasPrefix(c.Path, prefix) {
			return fmt.Errorf("metrics.path '%s' collides with '%s'", c.Path, prefix)
		}
	}

	return nil
}
