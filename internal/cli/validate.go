package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kazt/internal/compiler"
	"github.com/roach88/kazt/internal/ir"
)

// ValidateOutput is the data payload of the validate command.
type ValidateOutput struct {
	File         string `json:"file"`
	BlockCount   int    `json:"block_count"`
	BlockSetHash string `json:"blockset_hash"`
	ir.ValidationResult
	Diagnostics []compiler.Diagnostic `json:"diagnostics"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules-file>",
		Short: "Validate a rule set graph",
		Long: `Validate a rule set file (.json, .yaml, .yml or .cue).

Checks for dangling connections, cycles, incompatible ordering and matching
blocks, overlapping filter lists and inverted batch bounds. Warnings are
reported but do not make the rule set invalid.

Exit codes:
  0 - Rule set is valid (warnings allowed)
  1 - Rule set has conflicts
  2 - Command error (unreadable file, bad params, etc.)

Examples:
  kazt validate rules.yaml
  kazt validate rules.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.newFormatter(cmd)

	rs, err := LoadRuleSet(path)
	if err != nil {
		return failLoad(formatter, err)
	}
	formatter.VerboseLog("Loaded %d block(s) from %s", len(rs.Blocks), path)

	hash, err := ir.BlockSetHash(rs.Blocks)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to hash rule set", err)
	}

	diags := compiler.Diagnose(rs.Blocks)
	if diags == nil {
		diags = []compiler.Diagnostic{}
	}
	out := ValidateOutput{
		File:             path,
		BlockCount:       len(rs.Blocks),
		BlockSetHash:     hash,
		ValidationResult: compiler.Summarize(diags),
		Diagnostics:      diags,
	}

	opts.logger().WithFields(logrus.Fields{
		"block_count": out.BlockCount,
		"valid":       out.Valid,
		"conflicts":   len(out.Conflicts),
	}).Info("validated rule set")

	if !out.Valid {
		return outputValidationFailure(formatter, out)
	}
	return outputValidateSuccess(formatter, out)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, out ValidateOutput) error {
	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	fmt.Fprintf(formatter.Writer, "✓ Rule set valid (%d blocks)\n", out.BlockCount)
	writeDiagnostics(formatter, out.Diagnostics)
	return nil
}

// outputValidationFailure outputs the conflicts of an invalid rule set.
func outputValidationFailure(formatter *OutputFormatter, out ValidateOutput) error {
	first := firstConflict(out.Diagnostics)

	if formatter.Format == "json" {
		if err := formatter.Reject(first.Code, first.Message, out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Rule set invalid")
		fmt.Fprintln(formatter.Writer)
		writeDiagnostics(formatter, out.Diagnostics)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d conflict(s)", len(out.Conflicts)))
}

// writeDiagnostics prints one line per diagnostic in check order.
func writeDiagnostics(formatter *OutputFormatter, diags []compiler.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", d.Level, d.Code, d.Message)
	}
}

// firstConflict returns the first conflict-level diagnostic.
func firstConflict(diags []compiler.Diagnostic) compiler.Diagnostic {
	for _, d := range diags {
		if d.Level == compiler.LevelConflict {
			return d
		}
	}
	return compiler.Diagnostic{Code: ErrCodeGeneric, Message: "rule set is invalid"}
}
