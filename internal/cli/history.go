package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/kazt/internal/store"
)

// HistoryOutput is the data payload of the history command.
type HistoryOutput struct {
	Simulations []store.SimulationLog `json:"simulations"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		owner string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved simulations",
		Long: `List simulations recorded with kazt simulate --save, newest first.

Examples:
  kazt history
  kazt history --owner alice --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.newFormatter(cmd)
			st, err := rootOpts.openStore(formatter)
			if err != nil {
				return err
			}
			defer st.Close()

			logs, err := st.ListSimulations(context.Background(), owner, limit)
			if err != nil {
				return failStore(formatter, err)
			}

			if formatter.Format == "json" {
				return formatter.Success(HistoryOutput{Simulations: logs})
			}
			if len(logs) == 0 {
				fmt.Fprintln(formatter.Writer, "No simulations recorded.")
				return nil
			}
			for _, l := range logs {
				ruleSet := l.RuleSetID
				if ruleSet == "" {
					ruleSet = "-"
				}
				fmt.Fprintf(formatter.Writer, "%s  %s  rule_set=%s  total=%d processed=%d filtered=%d",
					l.ID, l.CreatedAt.UTC().Format(time.RFC3339), ruleSet, l.TotalTxs, l.Processed, l.Filtered)
				if len(l.Conflicts) > 0 {
					fmt.Fprintf(formatter.Writer, "  conflicts=%d", len(l.Conflicts))
				}
				fmt.Fprintln(formatter.Writer)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", DefaultOwner, "list simulations of this owner")
	cmd.Flags().IntVar(&limit, "limit", store.DefaultHistoryLimit, "maximum number of simulations")

	return cmd
}
