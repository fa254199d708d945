package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/store"
)

// DefaultDBPath is the database used when neither --db nor KAZT_DB is set.
const DefaultDBPath = "kazt.db"

// DefaultOwner owns rule sets and simulations saved without --owner.
const DefaultOwner = "local"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string
	DBPath   string

	// Logger is built from LogLevel before any subcommand runs.
	// Commands constructed without the root fall back to a discarding logger.
	Logger *logrus.Logger

	// StoreOptions are passed to store.Open. Tests use them to pin the
	// clock and id generator.
	StoreOptions []store.Option

	// Clock stamps export metadata. Nil means the wall clock.
	Clock engine.Clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kazt CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kazt",
		Short: "kazt - rule graph validation and transaction simulation",
		Long: `Validate transaction-ordering rule graphs, simulate them against
synthetic transactions, and export them for on-chain deployment.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			logger, err := newLogger(opts.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.Logger = logger
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", logrus.WarnLevel.String(), "log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", envOr("KAZT_DB", DefaultDBPath), "path to SQLite database (env KAZT_DB)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger builds the CLI logger. Logs go to w (stderr) so JSON on
// stdout stays parseable.
func newLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, nil
}

// logger returns the configured logger or one that discards everything.
func (o *RootOptions) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// clock returns the configured clock or the wall clock.
func (o *RootOptions) clock() engine.Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return engine.WallClock{}
}

// dbPath returns the database path, falling back to the default.
func (o *RootOptions) dbPath() string {
	if o.DBPath == "" {
		return DefaultDBPath
	}
	return o.DBPath
}

// openStore opens the configured database as a command error on failure.
func (o *RootOptions) openStore(formatter *OutputFormatter) (*store.Store, error) {
	path := o.dbPath()
	o.logger().WithField("db", path).Debug("opening database")

	st, err := store.Open(path, o.StoreOptions...)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	return st, nil
}

// newFormatter builds the output formatter for cmd.
func (o *RootOptions) newFormatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
