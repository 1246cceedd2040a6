// Package commands implements the adlsctl command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adlstore/adls_sdk_go/internal/cli/output"
	"github.com/adlstore/adls_sdk_go/internal/logger"
	"github.com/adlstore/adls_sdk_go/pkg/adls"
	"github.com/adlstore/adls_sdk_go/pkg/bootstrap"
	"github.com/adlstore/adls_sdk_go/pkg/config"
)

// app holds global flag values and the client built from them.
type app struct {
	cfgFile  string
	mode     string
	endpoint string
	token    string
	seed     string
	timeout  time.Duration
	format   string
	verbose  bool

	client *adls.Client
	out    output.Format
}

// Execute runs adlsctl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds a fresh command tree. Every call returns independent
// flag state.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "adlsctl",
		Short: "Command line client for hierarchical file stores",
		Long: `adlsctl talks to a WebHDFS-style file store, or to an in-memory mock
when no endpoint is configured.

Configuration is read from $XDG_CONFIG_HOME/adls/config.yaml and ADLS_*
environment variables; flags override both.

Examples:
  # List a directory
  adlsctl --endpoint https://account.example.net ls /data

  # Upload a file and show its status as JSON
  adlsctl put ./report.csv /data/report.csv
  adlsctl stat /data/report.csv -o json`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/adls/config.yaml)")
	f.StringVar(&a.mode, "mode", "", "backend: auto, http or mock")
	f.StringVar(&a.endpoint, "endpoint", "", "service base URL")
	f.StringVar(&a.token, "token", "", "bearer token sent with every request")
	f.StringVar(&a.seed, "seed", "", "YAML seed file for mock mode")
	f.DurationVar(&a.timeout, "timeout", 0, "per-attempt HTTP timeout")
	f.StringVarP(&a.format, "output", "o", "table", "output format: table, json or yaml")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		a.lsCmd(), a.statCmd(), a.mkdirCmd(), a.rmCmd(), a.mvCmd(), a.duCmd(), a.touchCmd(),
		a.catCmd(), a.putCmd(), a.appendCmd(), a.ingestCmd(), a.concatCmd(),
		a.getfaclCmd(), a.setfaclCmd(), a.chmodCmd(), a.chownCmd(), a.accessCmd(), a.expireCmd(),
		a.trashCmd(),
	)
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(a.format)
	if err != nil {
		return err
	}
	a.out = format

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = a.mode
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = a.endpoint
		if !flags.Changed("mode") {
			cfg.Mode = config.ModeAuto
		}
	}
	if flags.Changed("token") {
		cfg.Token = a.token
	}
	if flags.Changed("seed") {
		cfg.Mock.Seed = a.seed
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	cfg.Logging.Level = "ERROR"
	if a.verbose {
		cfg.Logging.Level = "DEBUG"
	}
	cfg.Logging.Format = "console"
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	rt, err := bootstrap.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	a.client = rt.Client
	return nil
}

func (a *app) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *app) print(cmd *cobra.Command, data any, renderer output.TableRenderer, emptyMsg string) error {
	return output.Print(cmd.OutOrStdout(), a.out, data, renderer, emptyMsg)
}

// done prints a confirmation in table mode only, so json and yaml output
// stays machine readable.
func (a *app) done(cmd *cobra.Command, format string, args ...any) {
	if a.out == output.FormatTable {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	}
}

func (a *app) writer(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func isNotFound(err error) bool {
	var opErr *adls.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	return opErr.Status.HTTPStatus == 404 || opErr.Status.RemoteException == "FileNotFoundException"
}

func init() {
	// adlsctl is a short-lived process; flush whatever the client logged.
	cobra.OnFinalize(logger.Sync)
}
