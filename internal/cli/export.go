package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	To        string
	Out       string
	RuleSetID string
}

// ExportOutput is the data payload of export --out.
type ExportOutput struct {
	Format export.Format `json:"format"`
	Path   string        `json:"path"`
	Bytes  int           `json:"bytes"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [rules-file]",
		Short: "Export a rule set as JSON or an Anchor program",
		Long: fmt.Sprintf(`Export a rule set for deployment.

  json    versioned envelope carrying the block list
  anchor  Anchor program skeleton with one handler per block

The rule set is not validated; run kazt validate first.

Exit codes:
  0 - Exported
  2 - Command error (unsupported format, unreadable file, write failure)

Examples:
  kazt export rules.yaml --to json
  kazt export rules.cue --to anchor --out program.rs
  kazt export --rule-set 0193... --to json --format json

Formats: %s`, strings.Join(export.FormatNames(), ", ")),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runExport(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", string(export.FormatJSON), "export format")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the artifact to a file instead of stdout")
	cmd.Flags().StringVar(&opts.RuleSetID, "rule-set", "", "export a saved rule set by id")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	format := export.Format(opts.To)
	if !export.Supported(format) {
		return failRequest(formatter, engine.NewFormatError(opts.To, export.FormatNames()))
	}

	rs, err := resolveRuleSet(context.Background(), opts.RootOptions, path, opts.RuleSetID, formatter)
	if err != nil {
		return err
	}

	env := export.Export(rs.Blocks, format, opts.clock().Now())
	artifact, err := renderArtifact(env)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to render export", err)
	}

	opts.logger().WithFields(logrus.Fields{
		"format":      format,
		"block_count": len(rs.Blocks),
	}).Info("rule set exported")

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, artifact, 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to write export", err)
		}
		out := ExportOutput{Format: format, Path: opts.Out, Bytes: len(artifact)}
		if formatter.Format == "json" {
			return formatter.Success(out)
		}
		fmt.Fprintf(formatter.Writer, "✓ Wrote %s export to %s (%d bytes)\n", out.Format, out.Path, out.Bytes)
		return nil
	}

	if formatter.Format == "json" {
		return formatter.Success(env)
	}
	if _, err := formatter.Writer.Write(artifact); err != nil {
		return err
	}
	if !strings.HasSuffix(string(artifact), "\n") {
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

// renderArtifact returns the bytes written for an envelope: indented JSON
// for json, the program source for anchor.
func renderArtifact(env export.Envelope) ([]byte, error) {
	if src, ok := env.Data.(string); ok {
		return []byte(src), nil
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return append(data, '\n'), nil
}
