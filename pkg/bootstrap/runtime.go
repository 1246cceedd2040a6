// Package bootstrap builds a ready-to-use client from configuration,
// choosing between the HTTP service and the in-memory mock.
package bootstrap

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/adlstore/adls_sdk_go/internal/logger"
	"github.com/adlstore/adls_sdk_go/pkg/adls"
	"github.com/adlstore/adls_sdk_go/pkg/adls/mock"
	"github.com/adlstore/adls_sdk_go/pkg/config"
	"github.com/adlstore/adls_sdk_go/pkg/metrics"
)

const envConfigPath = "ADLS_CONFIG"

// Runtime is a configured client and the backend it resolved to.
type Runtime struct {
	Client *adls.Client
	// Mode is "http" or "mock".
	Mode string
	// Mock is the in-memory service behind Client in mock mode, nil otherwise.
	Mock *mock.Service
}

// NewFromEnv loads configuration from the file named by ADLS_CONFIG (or the
// default location) with ADLS_* overrides, then calls NewFromConfig.
func NewFromEnv(opts ...adls.Option) (*Runtime, error) {
	cfg, err := config.Load(strings.TrimSpace(os.Getenv(envConfigPath)))
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap: load config")
	}
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig initializes logging and metrics from cfg and builds the
// client. opts are applied after the configured ones.
func NewFromConfig(cfg *config.Config, opts ...adls.Option) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: nil config")
	}
	if err := logger.InitLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, errors.Wrap(err, "bootstrap: init logger")
	}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	base := []adls.Option{
		adls.WithLogger(logger.NewLogger("adls")),
		adls.WithMetrics(metrics.NewOperationMetrics()),
	}

	switch mode := cfg.ResolvedMode(); mode {
	case config.ModeHTTP:
		return newHTTPRuntime(cfg, append(base, opts...))
	case config.ModeMock:
		return newMockRuntime(cfg, append(base, opts...))
	default:
		return nil, errors.Errorf("bootstrap: unsupported mode %q", mode)
	}
}

func newHTTPRuntime(cfg *config.Config, opts []adls.Option) (*Runtime, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("bootstrap: http mode requires an endpoint")
	}
	httpOpts := []adls.Option{
		adls.WithAPIVersion(cfg.APIVersion),
		adls.WithTimeout(cfg.Timeout),
		adls.WithRetryPolicy(adls.RetryPolicy{
			MaxRetries: cfg.Retry.MaxRetries,
			BaseDelay:  cfg.Retry.BaseDelay,
			MaxDelay:   cfg.Retry.MaxDelay,
			Jitter:     cfg.Retry.Jitter,
		}),
	}
	if cfg.Token != "" {
		httpOpts = append(httpOpts, adls.WithBearerToken(cfg.Token))
	}
	client, err := adls.New(cfg.Endpoint, append(httpOpts, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap: init http client")
	}
	return &Runtime{Client: client, Mode: config.ModeHTTP}, nil
}

func newMockRuntime(cfg *config.Config, opts []adls.Option) (*Runtime, error) {
	svc := mock.New()
	if path := strings.TrimSpace(cfg.Mock.Seed); path != "" {
		seed, err := mock.LoadSeedFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "bootstrap: load mock seed")
		}
		if err := svc.Seed(seed); err != nil {
			return nil, errors.Wrap(err, "bootstrap: apply mock seed")
		}
	}
	return &Runtime{Client: adls.NewWithTransport(svc, opts...), Mode: config.ModeMock, Mock: svc}, nil
}
