package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/sessiongate/sessiongate/log"
)

// Configurable is a section of the configuration which can be enabled and logged
type Configurable interface {
	// IsEnabled returns true when the section is in use
	IsEnabled() bool

	// LogConfig logs the section
	LogConfig(*logrus.Entry)
}

// Config main configuration
type Config struct {
	Log          log.Config         `yaml:"log"`
	Ports        PortsConfig        `yaml:"ports"`
	SessionCache SessionCacheConfig `yaml:"sessionCache"`
	Vendor       VendorConfig       `yaml:"vendor"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Redis        RedisConfig        `yaml:"redis"`
}

// PortsConfig contains the listen addresses
type PortsConfig struct {
	HTTP string `yaml:"http" default:"4000"`
}

// NewDefaultConfig returns a configuration with all default values set
func NewDefaultConfig() (*Config, error) {
	cfg := Config{}

	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("can't apply default values: %w", err)
	}

	return &cfg, nil
}

// LoadConfig creates new config from YAML file
func LoadConfig(path string, mandatory bool) (*Config, error) {
	cfg, err := NewDefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)

	switch {
	case err == nil:
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("wrong file structure: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !mandatory:
		// config file doesn't exist: defaults and environment only
	default:
		return nil, fmt.Errorf("can't read config file: %w", err)
	}

	if err := loadEnvironment(cfg); err != nil {
		return nil, fmt.Errorf("can't apply environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	var err *multierror.Error

	if cfg.Ports.HTTP == "" {
		err = multierror.Append(err, errors.New("ports.http must be set"))
	}

	err = multierror.Append(err, cfg.SessionCache.validate(), cfg.Vendor.validate(), cfg.Metrics.validate(),
		cfg.Redis.validate())

	return err.ErrorOrNil()
}

// LogConfig logs every enabled section
func (cfg *Config) LogConfig(logger *logrus.Entry) {
	sections := []struct {
		name string
		cfg  Configurable
	}{
		{"sessionCache", &cfg.SessionCache},
		{"vendor", &cfg.Vendor},
		{"metrics", &cfg.Metrics},
		{"redis", &cfg.Redis},
	}

	logger.Infof("http port: %s", cfg.Ports.HTTP)

	for _, s := range sections {
		if !s.cfg.IsEnabled() {
			logger.Infof("%s: disabled", s.name)

			continue
		}

		logger.Infof("%s:", s.name)
		s.cfg.LogConfig(logger.WithField("section", s.name))
	}
}
