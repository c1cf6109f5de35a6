// Command uefiscdi downloads, extracts and queries the UEFISCDI journal
// rankings.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/download"
	"github.com/joseph-ayodele/uefiscdi/internal/extract"
	"github.com/joseph-ayodele/uefiscdi/internal/pdftext"
	"github.com/joseph-ayodele/uefiscdi/internal/pipeline"
	"github.com/joseph-ayodele/uefiscdi/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	verbose    bool
	jsonLogs   bool

	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "uefiscdi",
		Short:         "Extract and query UEFISCDI journal rankings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $UEFISCDI_CONFIG)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&a.jsonLogs, "json-logs", false, "log as JSON")

	root.AddCommand(
		newDatabasesCmd(a),
		newIndexCmd(a),
		newExtractCmd(a),
		newSearchCmd(a),
		newResolveCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newCacheCmd(a),
	)
	return root
}

func (a *app) setup(w io.Writer) error {
	a.logger = newLogger(w, a.verbose, a.jsonLogs)
	slog.SetDefault(a.logger)

	cfg, err := common.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// newLogger outputs messages with variables but no time/level, or JSON.
func newLogger(w io.Writer, verbose, jsonLogs bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time and level attributes, keep message and other variables
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func (a *app) openStore(ctx context.Context) (repository.Store, error) {
	store, err := repository.NewStore(ctx, a.cfg.Cache, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

func (a *app) extractor() *extract.Extractor {
	return extract.NewExtractor(pdftext.New(a.cfg.PDF, a.logger), a.logger)
}

func (a *app) processor(store repository.Store) *pipeline.Processor {
	fetcher := download.NewClient(a.cfg.Download, a.logger)
	return pipeline.NewProcessor(a.cfg, fetcher, a.extractor(), store, a.logger)
}
