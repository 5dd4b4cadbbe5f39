package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
	"github.com/mitchellh/mapstructure"
)

const (
	// EnvConfigPrefix prefixes environment variables which override config values.
	// Sections are separated by '_', e.g. SESSIONGATE_VENDOR_URL or SESSIONGATE_SESSIONCACHE_LIFESPAN
	EnvConfigPrefix = "SESSIONGATE_"

	// EnvConfigFile is the path of the config file
	EnvConfigFile = "SESSIONGATE_CONFIG_FILE"
)

// loadEnvironment overrides the values of cfg with the SESSIONGATE_ variables.
// Keys are matched case insensitive against the yaml names.
func loadEnvironment(cfg *Config) error {
	k := koanf.New("_")

	err := k.Load(env.Provider(EnvConfigPrefix, "_", func(s string) string {
		if s == EnvConfigFile {
			return ""
		}

		return strings.TrimPrefix(s, EnvConfigPrefix)
	}), nil)
	if err != nil {
		return err
	}

	if len(k.Keys()) == 0 {
		return nil
	}

	return k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "yaml",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           cfg,
			TagName:          "yaml",
			WeaklyTypedInput: true,
		},
	})
}
