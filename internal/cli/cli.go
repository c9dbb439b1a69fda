package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fromage/internal/composer"
	"fromage/internal/config"
	"fromage/internal/convert"
	"fromage/internal/format"
	"fromage/internal/parser"
	"fromage/internal/textutil"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "fromage",
		Short: "Converts translation files",
		Long: `Converts localization resource files between the line-oriented ATools
format and CSV, keeping comments, disabled entries and identifiers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
			}
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Each subcommand copies these so flag values stay per command.
	defaults := newConversionFlags(cfg)

	rootCmd.AddCommand(convertCmd(defaults))
	rootCmd.AddCommand(batchCmd(cfg, defaults))
	rootCmd.AddCommand(catalogCmd(cfg, defaults))

	return rootCmd
}

// conversionFlags holds the flags shared by every command that parses or
// composes resource files.
type conversionFlags struct {
	separator string
	column    string
	input     format.Format
	output    format.Format
	eol       string
}

func newConversionFlags(cfg *config.Config) *conversionFlags {
	return &conversionFlags{
		separator: cfg.CSVSeparator,
		column:    cfg.TranslationColumn,
		input:     formatOrDefault(cfg.InputFormat, format.ATools),
		output:    formatOrDefault(cfg.OutputFormat, format.CSV),
		eol:       cfg.LineEnding,
	}
}

func (f *conversionFlags) registerCSV(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.separator, "csv-separator", "c", f.separator, "CSV separator")
	cmd.Flags().StringVarP(&f.column, "translation-column", "t", f.column, "Name of column containing translations to export from CSV file")
}

func (f *conversionFlags) registerInput(cmd *cobra.Command) {
	cmd.Flags().Var(&f.input, "if", "Input format (atools, csv)")
}

func (f *conversionFlags) registerOutput(cmd *cobra.Command) {
	cmd.Flags().Var(&f.output, "of", "Output format (atools, csv)")
	cmd.Flags().StringVar(&f.eol, "eol", f.eol, "ATools line ending (crlf, lf)")
}

// options turns the flags into conversion options. Pairing is not checked
// here so that catalog commands can use a single side.
func (f *conversionFlags) options(file string) (convert.Options, error) {
	sep, err := parseSeparator(f.separator)
	if err != nil {
		return convert.Options{}, err
	}
	eol, err := parseLineEnding(f.eol)
	if err != nil {
		return convert.Options{}, err
	}

	return convert.Options{
		Input:             f.input,
		Output:            f.output,
		Separator:         sep,
		TranslationColumn: f.column,
		LineEnding:        eol,
		OnSkip:            warnSkipped(file),
	}, nil
}

func parseSeparator(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: separator must be a single character, got %q", convert.ErrBadSeparator, s)
	}
	if err := convert.CheckSeparator(r); err != nil {
		return 0, err
	}
	return r, nil
}

func parseLineEnding(s string) (string, error) {
	switch strings.ToLower(s) {
	case "crlf", "":
		return composer.CRLF, nil
	case "lf":
		return composer.LF, nil
	default:
		return "", fmt.Errorf("invalid line ending %q; available: crlf, lf", s)
	}
}

func formatOrDefault(name string, fallback format.Format) format.Format {
	f, err := format.Parse(name)
	if err != nil {
		log.Warn().Err(err).Str("default", fallback.String()).Msg("Ignoring configured format")
		return fallback
	}
	return f
}

// warnSkipped logs every line the parser rejected in file.
func warnSkipped(file string) composer.SkipFunc {
	return func(err error) {
		ev := log.Warn().Str("file", file)
		var le *parser.LineError
		if errors.As(err, &le) {
			ev = ev.Int("line", le.Line).Str("text", textutil.Truncate(le.Text, 120))
			if le.Err != nil {
				ev = ev.Str("reason", le.Err.Error())
			}
		} else {
			ev = ev.Err(err)
		}
		ev.Msg("Skipping bad line")
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
