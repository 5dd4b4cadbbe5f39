package config

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// RedisConfig configuration for the redis connection used to broadcast cache drains between instances
type RedisConfig struct {
	Address            string   `yaml:"address"`
	Username           string   `yaml:"username" default:""`
	Password           string   `yaml:"password" default:""`
	Database           int      `yaml:"database" default:"0"`
	Required           bool     `yaml:"required" default:"false"`
	ConnectionAttempts int      `yaml:"connectionAttempts" default:"3"`
	ConnectionCooldown Duration `yaml:"connectionCooldown" default:"1s"`
}

// IsEnabled implements `config.Configurable`
func (c *RedisConfig) IsEnabled() bool {
	return c.Address != ""
}

// LogConfig implements `config.Configurable`
func (c *RedisConfig) LogConfig(logger *logrus.Entry) {
	logger.Info("address: ", c.Address)
	logger.Info("username: ", c.Username)
	logger.Info("password: ", obfuscatePassword(c.Password))
	logger.Info("database: ", c.Database)
	logger.Info("required: ", c.Required)
	logger.Info("connectionAttempts: ", c.ConnectionAttempts)
	logger.Info("connectionCooldown: ", c.ConnectionCooldown)
}

func (c *RedisConfig) validate() error {
	if c.IsEnabled() && c.ConnectionAttempts < 1 {
		return errors.New("redis.connectionAttempts must be at least 1")
	}

	return nil
}

// obfuscatePassword replaces all characters of a password with *
func obfuscatePassword(pass string) string {
	return strings.Repeat("*", len(pass))
}
