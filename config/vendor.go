package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// VendorConfig configuration of the vendor API behind the facade
type VendorConfig struct {
	URL          string   `yaml:"url"`
	Timeout      Duration `yaml:"timeout" default:"10s"`
	DialAttempts uint     `yaml:"dialAttempts" default:"3"`
	DialCooldown Duration `yaml:"dialCooldown" default:"500ms"`
}

// IsEnabled implements `config.Configurable`.
func (c *VendorConfig) IsEnabled() bool {
	return c.URL != ""
}

// LogConfig implements `config.Configurable`.
func (c *VendorConfig) LogConfig(logger *logrus.Entry) {
	logger.Infof("url = %s", c.URL)
	logger.Infof("timeout = %s", c.Timeout)
	logger.Infof("dialAttempts = %d", c.DialAttempts)
	logger.Infof("dialCooldown = %s", c.DialCooldown)
}

func (c *VendorConfig) validate() error {
	if !c.IsEnabled() {
		return nil
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("vendor.url is invalid: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("vendor.url '%s' must use http or https", c.URL)
	}

	if c.DialAttempts == 0 {
		return errors.New("vendor.dialAttempts must be at least 1")
	}

	return nil
}
