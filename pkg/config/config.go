// Package config loads client settings from a YAML or TOML file, ADLS_*
// environment variables and built-in defaults.
//
// Precedence, highest first: environment, file, defaults. A key such as
// retry.max_retries is overridden by ADLS_RETRY_MAX_RETRIES.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "ADLS"

// Runtime modes.
const (
	ModeAuto = "auto"
	ModeHTTP = "http"
	ModeMock = "mock"
)

// Config is the complete client configuration.
type Config struct {
	// Mode selects the backend. auto uses HTTP when an endpoint is set and
	// the in-memory mock otherwise.
	Mode string `mapstructure:"mode" validate:"required,oneof=auto http mock"`

	Endpoint   string `mapstructure:"endpoint" validate:"omitempty,url"`
	APIVersion string `mapstructure:"api_version" validate:"required"`

	// Token is passed through as a bearer header. It is never parsed.
	Token string `mapstructure:"token"`

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	Retry   RetryConfig   `mapstructure:"retry"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Mock    MockConfig    `mapstructure:"mock"`
}

// RetryConfig controls retries of transient HTTP failures.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay" validate:"gte=0"`
	MaxDelay   time.Duration `mapstructure:"max_delay" validate:"gtefield=BaseDelay"`
	Jitter     float64       `mapstructure:"jitter" validate:"gte=0,lte=1"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json console"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MockConfig configures the in-memory backend used in mock mode.
type MockConfig struct {
	// Seed is an optional YAML seed file applied to a fresh mock.
	Seed string `mapstructure:"seed"`
}

// keys lists every configuration key so AutomaticEnv can resolve them during
// Unmarshal even when the file does not mention them.
var keys = []string{
	"mode",
	"endpoint",
	"api_version",
	"token",
	"timeout",
	"retry.max_retries",
	"retry.base_delay",
	"retry.max_delay",
	"retry.jitter",
	"logging.level",
	"logging.format",
	"metrics.enabled",
	"mock.seed",
}

// Load reads configuration from configPath, or from the default location
// when configPath is empty. A missing default file is not an error; a
// missing explicit file is.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(GetConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper, configPath string) error {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return errors.Wrapf(err, "config file %s", configPath)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config file")
	}
	return nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/adls, falling back to ~/.config/adls.
func GetConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "adls")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "adls")
}

// GetDefaultConfigPath returns the path Load reads when given no path.
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// ResolvedMode returns the concrete backend, resolving auto.
func (c *Config) ResolvedMode() string {
	if c.Mode != ModeAuto {
		return c.Mode
	}
	if c.Endpoint != "" {
		return ModeHTTP
	}
	return ModeMock
}
