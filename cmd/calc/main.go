// Package main is the entry point for the calculator.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/calc/pkg/config"
	"github.com/lemonberrylabs/calc/pkg/linesource"
	"github.com/lemonberrylabs/calc/pkg/repl"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errLinesFailed makes the process exit non-zero after per-line failures,
// which have already been reported.
var errLinesFailed = errors.New("one or more lines failed")

var rootCmd = &cobra.Command{
	Use:           "calc [file]",
	Short:         "Interactive BODMAS integer calculator",
	Long:          "Reads one arithmetic expression per line from a file or standard input and prints its value.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("calc version {{.Version}}\n")

	addConfigFlags(rootCmd)

	rootCmd.Flags().String("color", "", "Color output: auto, always, never (default auto, env CALC_COLOR)")
	rootCmd.Flags().String("prompt", "", "Interactive prompt (default \"> \", env CALC_PROMPT)")
	rootCmd.Flags().Bool("no-banner", false, "Do not print the banner in interactive mode")

	rootCmd.AddCommand(serveCmd)
}

// addConfigFlags defines the flags loadConfig reads, shared by every command.
func addConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file, .yaml/.yml or .toml (env CALC_CONFIG)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default warn, env CALC_LOG_LEVEL)")
	cmd.PersistentFlags().Int("max-line-length", 0, "Longest accepted expression in bytes (default 1024, env CALC_MAX_LINE_LENGTH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errLinesFailed) {
			fmt.Fprintf(os.Stderr, "calc: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("color"); v != "" {
		cfg.Color = v
	}
	if v, _ := cmd.Flags().GetString("prompt"); v != "" {
		cfg.Prompt = v
	}
	if v, _ := cmd.Flags().GetBool("no-banner"); v {
		cfg.Banner = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	src := linesource.New(in,
		linesource.WithPrompt(cmd.OutOrStdout(), cfg.Prompt),
		linesource.WithMaxLineLength(cfg.MaxLineLength),
	)
	printer := repl.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Color)
	if src.Interactive() && cfg.Banner {
		printer.Banner(version)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The first signal stops the run after the current line; a second one
	// falls back to the default behaviour.
	go func() {
		<-ctx.Done()
		stop()
	}()

	driver := repl.New(src, printer, logger.With().Str("component", "driver").Logger())
	summary, err := driver.Run(ctx)
	if src.Interactive() {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	logger.Debug().Int("lines", summary.Lines).Int("failed", summary.Failed).Msg("run finished")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if summary.Failed > 0 {
		return errLinesFailed
	}
	return nil
}

// loadConfig layers the config file, CALC_* variables and the flags shared by
// every command, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CALC_CONFIG")
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetInt("max-line-length"); v != 0 {
		cfg.MaxLineLength = v
	}
	return cfg, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().
		Logger(), nil
}
