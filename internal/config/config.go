// Package config loads settings for the countries command.
//
// Values are layered: struct defaults, then an optional YAML file, then
// STENCIL_* environment variables, each overriding the one before.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "STENCIL_"

// Config holds the countries command settings.
type Config struct {
	BaseURL       string        `koanf:"base_url"`
	Codes         []string      `koanf:"codes"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Format        string        `koanf:"format"`
	Log           LogConfig     `koanf:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:       "https://restcountries.com/v2/alpha",
		Codes:         []string{"ua", "us", "de", "nl", "jp"},
		Timeout:       10 * time.Second,
		RatePerSecond: 2,
		Format:        "json",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path or a missing file is skipped.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitCodes(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RatePerSecond < 0 {
		return fmt.Errorf("rate_per_second must not be negative, got %g", c.RatePerSecond)
	}
	switch c.Format {
	case "json", "yaml", "msgpack", "bson":
	default:
		return fmt.Errorf("format %q is not one of json, yaml, msgpack, bson", c.Format)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, console", c.Log.Format)
	}
	return nil
}

// envTransformFunc maps STENCIL_LOG_LEVEL to log.level and
// STENCIL_RATE_PER_SECOND to rate_per_second.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// splitCodes turns a comma-separated codes value, as set from the
// environment, into a list.
func splitCodes(k *koanf.Koanf) error {
	s, ok := k.Get("codes").(string)
	if !ok {
		return nil
	}
	codes := make([]string, 0)
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	if err := k.Set("codes", codes); err != nil {
		return fmt.Errorf("failed to set codes: %w", err)
	}
	return nil
}
