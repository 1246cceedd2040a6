package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adlstore/adls_sdk_go/internal/logger"
	"github.com/adlstore/adls_sdk_go/pkg/adls/mock"
	"github.com/adlstore/adls_sdk_go/pkg/metrics"
)

type options struct {
	addr       string
	seed       string
	latency    time.Duration
	fail       string
	withMetric bool
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "adls-sandbox:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "adls-sandbox",
		Short: "Serve an in-memory file store over the REST protocol",
		Long: `adls-sandbox runs the in-memory mock behind an HTTP listener so the
SDK, adlsctl or any REST client can be exercised without a real account.

Examples:
  # Serve an empty store on :8787
  adls-sandbox

  # Seed files and make 10% of requests fail with 503
  adls-sandbox --seed seed.yaml --fail rate=0.1,code=503 --latency 20ms`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", ":8787", "listen address")
	f.StringVar(&opts.seed, "seed", "", "path to a YAML seed file")
	f.DurationVar(&opts.latency, "latency", 0, "artificial latency per request")
	f.StringVar(&opts.fail, "fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	f.BoolVar(&opts.withMetric, "metrics", true, "expose Prometheus metrics on /metrics")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level")
	f.StringVar(&opts.logFormat, "log-format", "console", "log format (console or json)")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	if err := logger.InitLogger(opts.logLevel, opts.logFormat); err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.NewLogger("sandbox")

	failCfg, err := parseFailConfig(opts.fail)
	if err != nil {
		return fmt.Errorf("parse --fail: %w", err)
	}

	svc := mock.New()
	if opts.seed != "" {
		seed, err := mock.LoadSeedFile(opts.seed)
		if err != nil {
			return err
		}
		if err := svc.Seed(seed); err != nil {
			return err
		}
	}

	if opts.withMetric {
		metrics.InitRegistry()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", withMiddleware(svc.Handler(), opts.latency, failCfg, newRequestCounter(), log))

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Infow("adls-sandbox listening", "addr", opts.addr, "seed", opts.seed, "latency", opts.latency)
	host := opts.addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	fmt.Println()
	fmt.Println("export ADLS_MODE=http")
	fmt.Printf("export ADLS_ENDPOINT=http://%s\n", host)
	fmt.Println()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
