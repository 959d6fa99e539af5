package server

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config holds the validation server settings. It uses "mapstructure" tags
// so a YAML config file can be decoded loosely over the defaults.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr" mapstructure:"addr"`

	// MaxBodyBytes caps the size of a submitted definition.
	MaxBodyBytes int64 `json:"max_body_bytes" mapstructure:"max_body_bytes"`

	Redis RedisConfig `json:"redis" mapstructure:"redis"`
}

// RedisConfig enables the compiled-model cache when Addr is set.
type RedisConfig struct {
	Addr     string        `json:"addr" mapstructure:"addr"`
	Password string        `json:"password" mapstructure:"password"`
	DB       int           `json:"db" mapstructure:"db"`
	TTL      time.Duration `json:"ttl" mapstructure:"ttl"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		MaxBodyBytes: 1 << 20,
	}
}

// LoadConfig reads a YAML config file over the defaults. Unknown keys are
// ignored so config files can carry deployment-specific extras.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}
