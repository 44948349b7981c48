// a64xlate translates A64 "vector x indexed element" multiply instructions
// to IR, disassembles them and runs them on the reference evaluator.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/colorfulnotion/a64jit/jit"
	log "github.com/colorfulnotion/a64jit/log"
	"github.com/colorfulnotion/a64jit/xlaterrors"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

type options struct {
	cachePath    string
	logLevel     string
	logJSON      bool
	debug        string
	otlpEndpoint string
	trace        bool

	tp *sdktrace.TracerProvider
}

func (o *options) setup(ctx context.Context) error {
	if err := log.InitLogger(o.logLevel, o.logJSON); err != nil {
		return err
	}
	log.EnableModules(o.debug)
	if o.otlpEndpoint != "" {
		tp, err := jit.NewTracerProvider(ctx, o.otlpEndpoint)
		if err != nil {
			return err
		}
		o.tp = tp
	}
	return nil
}

func (o *options) teardown(ctx context.Context) {
	if o.tp == nil {
		return
	}
	if err := o.tp.Shutdown(ctx); err != nil {
		log.Warn(log.JITModule, "tracer shutdown", "err", err)
	}
}

func (o *options) translator() (*jit.Translator, error) {
	cfg := jit.Config{CachePath: o.cachePath, Trace: o.trace}
	if o.tp != nil {
		cfg.TracerProvider = o.tp
	}
	return jit.NewTranslator(cfg)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "a64xlate",
		Short:         "A64 indexed-element multiply translator",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.teardown(cmd.Context())
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cachePath, "cache", "", "Translation cache directory (in memory when empty)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error, crit)")
	flags.BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON")
	flags.StringVar(&opts.debug, "debug", "", "Comma separated debug modules to enable (a64_decode,a64_translate,jit,jit_cache or all)")
	flags.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "Export translation spans to an OTLP/HTTP collector")
	flags.BoolVar(&opts.trace, "trace", false, "Log the IR of every translated unit")

	rootCmd.AddCommand(
		newTranslateCmd(opts),
		newDisasmCmd(),
		newRunCmd(opts),
		newReplCmd(opts),
	)
	return rootCmd
}

// reportFailure logs a failed command, tagging errors from the xlaterrors
// taxonomy with their code.
func reportFailure(err error) {
	attrs := []any{"err", err}
	if code := xlaterrors.GetErrorCode(err); code != "" {
		attrs = append(attrs, "code", code, "kind", xlaterrors.GetErrorName(err))
	}
	log.Error(log.CLIModule, "command failed", attrs...)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		reportFailure(err)
		os.Exit(1)
	}
}
