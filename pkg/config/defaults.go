package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/adlstore/adls_sdk_go/internal/httpx"
	"github.com/adlstore/adls_sdk_go/internal/webhdfs"
)

// setViperDefaults registers defaults for keys whose zero value is
// meaningful, so an explicit 0 in the file or environment survives.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("retry.max_retries", httpx.DefaultRetryPolicy.MaxRetries)
	v.SetDefault("retry.jitter", httpx.DefaultRetryPolicy.Jitter)
}

// ApplyDefaults fills zero values. Explicit values are kept.
func ApplyDefaults(cfg *Config) {
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.APIVersion == "" {
		cfg.APIVersion = webhdfs.APIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	applyRetryDefaults(&cfg.Retry)
	applyLoggingDefaults(&cfg.Logging)
}

func applyRetryDefaults(cfg *RetryConfig) {
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = httpx.DefaultRetryPolicy.BaseDelay
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = httpx.DefaultRetryPolicy.MaxDelay
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
}
