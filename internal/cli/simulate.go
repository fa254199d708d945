package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/ir"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Samples   int
	Seed      int64
	RuleSetID string // simulate a saved rule set instead of a file
	Save      bool
	Owner     string
}

// SimulateOutput is the data payload of the simulate command.
type SimulateOutput struct {
	ir.SimulationReport
	Seed      *int64 `json:"seed,omitempty"`
	RuleSetID string `json:"rule_set_id,omitempty"`
	RunID     string `json:"run_id,omitempty"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate [rules-file]",
		Short: "Simulate sample transactions through a rule set",
		Long: `Validate a rule set and run synthetic transactions through its
filter, ordering and batching stages.

The rule set comes from a file argument or, with --rule-set, from the
database. An invalid rule set is not simulated; its conflicts are reported.

Exit codes:
  0 - Simulation ran
  1 - Rule set has conflicts
  2 - Command error (bad sample count, unreadable file, database error)

Examples:
  kazt simulate rules.yaml
  kazt simulate rules.yaml --samples 20 --seed 42
  kazt simulate --rule-set 0193... --save --owner alice`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runSimulate(opts, path, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Samples, "samples", "n", engine.DefaultSampleTxs,
		fmt.Sprintf("number of sample transactions (%d-%d)", engine.MinSampleTxs, engine.MaxSampleTxs))
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed for reproducible samples (default: time-seeded)")
	cmd.Flags().StringVar(&opts.RuleSetID, "rule-set", "", "simulate a saved rule set by id")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "record the report in the simulation history")
	cmd.Flags().StringVar(&opts.Owner, "owner", DefaultOwner, "owner recorded with --save")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.newFormatter(cmd)

	if err := engine.CheckSampleCount(opts.Samples); err != nil {
		return failRequest(formatter, err)
	}
	rs, err := resolveRuleSet(ctx, opts.RootOptions, path, opts.RuleSetID, formatter)
	if err != nil {
		return err
	}

	engineOpts := engine.Options{Logger: opts.logger()}
	out := SimulateOutput{RuleSetID: opts.RuleSetID}
	if cmd.Flags().Changed("seed") {
		engineOpts.Source = engine.NewSeededSource(opts.Seed)
		seed := opts.Seed
		out.Seed = &seed
	}
	out.SimulationReport = engine.Simulate(rs.Blocks, opts.Samples, engineOpts)

	if opts.Save {
		st, err := opts.openStore(formatter)
		if err != nil {
			return err
		}
		defer st.Close()

		log, err := st.LogSimulation(ctx, opts.RuleSetID, opts.Owner, out.SimulationReport)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to save simulation", err)
		}
		out.RunID = log.ID
		opts.logger().WithFields(logrus.Fields{
			"run_id":      log.ID,
			"rule_set_id": opts.RuleSetID,
		}).Info("simulation saved")
	}

	if len(out.Conflicts) > 0 {
		return outputSimulateConflicts(formatter, out)
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	writeSimulateText(formatter, out)
	return nil
}

// outputSimulateConflicts reports a skipped simulation.
func outputSimulateConflicts(formatter *OutputFormatter, out SimulateOutput) error {
	if formatter.Format == "json" {
		if err := formatter.Reject(ErrCodeInvalidRuleSet, out.Conflicts[0], out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Rule set invalid, simulation skipped")
		fmt.Fprintln(formatter.Writer)
		for _, c := range out.Conflicts {
			fmt.Fprintf(formatter.Writer, "  conflict: %s\n", c)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("simulation skipped: %d conflict(s)", len(out.Conflicts)))
}

// writeSimulateText prints the report summary and one line per transaction.
func writeSimulateText(formatter *OutputFormatter, out SimulateOutput) {
	w := formatter.Writer

	fmt.Fprintf(w, "Simulated %d transaction(s): %d processed, %d filtered\n",
		out.TotalTxs, out.Processed, out.Filtered)
	if out.Seed != nil {
		fmt.Fprintf(w, "Seed: %d\n", *out.Seed)
	}
	fmt.Fprintln(w)

	for _, r := range out.Results {
		fmt.Fprintf(w, "  %-12s %-9s", r.TxID, r.Outcome)
		if r.Position != nil {
			fmt.Fprintf(w, " pos=%d", *r.Position)
		}
		if r.BatchID != nil {
			fmt.Fprintf(w, " batch=%d", *r.BatchID)
		}
		if r.Reason != nil {
			fmt.Fprintf(w, " %s", *r.Reason)
		}
		fmt.Fprintln(w)
	}

	if out.RunID != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "✓ Saved simulation %s\n", out.RunID)
	}
}
