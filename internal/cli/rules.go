package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kazt/internal/compiler"
	"github.com/roach88/kazt/internal/ir"
	"github.com/roach88/kazt/internal/store"
)

// RuleSetSummary is one row of rules list and rules templates.
type RuleSetSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	Category   string `json:"template_category,omitempty"`
	BlockCount int    `json:"block_count"`
	UseCount   int    `json:"use_count"`
}

// RuleSetListOutput is the data payload of rules list and rules templates.
type RuleSetListOutput struct {
	RuleSets []RuleSetSummary `json:"rule_sets"`
}

// NewRulesCommand creates the rules command group.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage saved rule sets and templates",
		Long: `Save, list, show and delete rule sets in the local database, and
start new rule sets from the built-in template packs.

The database is chosen with --db or KAZT_DB.`,
	}

	cmd.AddCommand(newRulesSaveCommand(rootOpts))
	cmd.AddCommand(newRulesListCommand(rootOpts))
	cmd.AddCommand(newRulesShowCommand(rootOpts))
	cmd.AddCommand(newRulesTemplatesCommand(rootOpts))
	cmd.AddCommand(newRulesUseCommand(rootOpts))
	cmd.AddCommand(newRulesDeleteCommand(rootOpts))

	return cmd
}

type rulesSaveOptions struct {
	*RootOptions
	ID          string
	Name        string
	Description string
	Owner       string
}

func newRulesSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &rulesSaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <rules-file>",
		Short: "Validate a rule set file and save it",
		Long: `Validate a rule set file and store it in the database.

Rule sets with conflicts are refused. The name defaults to the name in the
file, then to the file name. Passing --id of an existing rule set owned by
--owner updates it.

Exit codes:
  0 - Saved
  1 - Rule set has conflicts
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "update the rule set with this id")
	cmd.Flags().StringVar(&opts.Name, "name", "", "rule set name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "rule set description")
	cmd.Flags().StringVar(&opts.Owner, "owner", DefaultOwner, "owner of the rule set")

	return cmd
}

func runRulesSave(opts *rulesSaveOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.newFormatter(cmd)

	rs, err := LoadRuleSet(path)
	if err != nil {
		return failLoad(formatter, err)
	}

	diags := compiler.Diagnose(rs.Blocks)
	if result := compiler.Summarize(diags); !result.Valid {
		first := firstConflict(diags)
		_ = formatter.Error(first.Code, first.Message, diags)
		return NewExitError(ExitFailure, fmt.Sprintf("refusing to save: %d conflict(s)", len(result.Conflicts)))
	}

	rs.ID = opts.ID
	rs.Owner = opts.Owner
	if opts.Name != "" {
		rs.Name = opts.Name
	}
	if rs.Name == "" {
		rs.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if opts.Description != "" {
		rs.Description = opts.Description
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.SaveRuleSet(ctx, *rs)
	if err != nil {
		return failStore(formatter, err)
	}
	opts.logger().WithFields(logrus.Fields{
		"rule_set_id": saved.ID,
		"owner":       saved.Owner,
	}).Info("rule set saved")

	if formatter.Format == "json" {
		return formatter.Success(saved)
	}
	fmt.Fprintf(formatter.Writer, "✓ Saved rule set %s (%s, %d blocks)\n", saved.ID, saved.Name, len(saved.Blocks))
	return nil
}

func newRulesListCommand(rootOpts *RootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List saved rule sets",
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

			sets, err := st.ListRuleSets(context.Background(), owner)
			if err != nil {
				return failStore(formatter, err)
			}
			return outputRuleSetList(formatter, sets, "No rule sets saved.")
		},
	}

	cmd.Flags().StringVar(&owner, "owner", DefaultOwner, "list rule sets of this owner")
	return cmd
}

func newRulesTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "templates",
		Short:         "List built-in template packs",
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

			sets, err := st.ListTemplates(context.Background())
			if err != nil {
				return failStore(formatter, err)
			}
			return outputRuleSetList(formatter, sets, "No templates available.")
		},
	}
}

func newRulesShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show a saved rule set or template",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.newFormatter(cmd)
			rs, err := resolveRuleSet(context.Background(), rootOpts, "", args[0], formatter)
			if err != nil {
				return err
			}
			if formatter.Format == "json" {
				return formatter.Success(rs)
			}
			writeRuleSetText(formatter, rs)
			return nil
		},
	}
}

type rulesUseOptions struct {
	*RootOptions
	Name  string
	Owner string
}

func newRulesUseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &rulesUseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "use <template-id>",
		Short: "Copy a template into a new rule set",
		Long: `Copy a built-in template into a new rule set owned by --owner and
count the use against the template.

Examples:
  kazt rules use tpl_orderbook
  kazt rules use tpl_dex_amm --name "my dex" --owner alice`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesUse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "name of the copy (default: template name)")
	cmd.Flags().StringVar(&opts.Owner, "owner", DefaultOwner, "owner of the copy")

	return cmd
}

func runRulesUse(opts *rulesUseOptions, templateID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.newFormatter(cmd)

	st, err := opts.openStore(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	tpl, err := st.UseTemplate(ctx, templateID)
	if err != nil {
		return failStore(formatter, err)
	}

	name := opts.Name
	if name == "" {
		name = tpl.Name
	}
	saved, err := st.SaveRuleSet(ctx, ir.RuleSet{
		Name:        name,
		Description: tpl.Description,
		Blocks:      tpl.Blocks,
		Owner:       opts.Owner,
	})
	if err != nil {
		return failStore(formatter, err)
	}
	opts.logger().WithFields(logrus.Fields{
		"template":    templateID,
		"rule_set_id": saved.ID,
	}).Info("template copied")

	if formatter.Format == "json" {
		return formatter.Success(saved)
	}
	fmt.Fprintf(formatter.Writer, "✓ Created rule set %s from %s\n", saved.ID, templateID)
	return nil
}

func newRulesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a saved rule set",
		Long:          `Delete a saved rule set. Templates cannot be deleted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.newFormatter(cmd)
			st, err := rootOpts.openStore(formatter)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteRuleSet(context.Background(), args[0]); err != nil {
				return failStore(formatter, err)
			}
			if formatter.Format == "json" {
				return formatter.Success(map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(formatter.Writer, "✓ Deleted rule set %s\n", args[0])
			return nil
		},
	}
}

// resolveRuleSet loads the rule set named by exactly one of path or id.
// Saved rule sets are read from the database.
func resolveRuleSet(ctx context.Context, opts *RootOptions, path, id string, formatter *OutputFormatter) (ir.RuleSet, error) {
	if (path == "") == (id == "") {
		_ = formatter.Error(ErrCodeGeneric, "exactly one of a rules file or --rule-set is required", nil)
		return ir.RuleSet{}, NewExitError(ExitCommandError, "exactly one of a rules file or --rule-set is required")
	}

	if path != "" {
		rs, err := LoadRuleSet(path)
		if err != nil {
			return ir.RuleSet{}, failLoad(formatter, err)
		}
		formatter.VerboseLog("Loaded %d block(s) from %s", len(rs.Blocks), path)
		return *rs, nil
	}

	st, err := opts.openStore(formatter)
	if err != nil {
		return ir.RuleSet{}, err
	}
	defer st.Close()

	rs, err := st.GetRuleSet(ctx, id)
	if err != nil {
		return ir.RuleSet{}, failStore(formatter, err)
	}
	formatter.VerboseLog("Loaded %d block(s) from rule set %s", len(rs.Blocks), id)
	return rs, nil
}

// failStore reports a database failure. Missing records use ErrCodeNotFound.
func failStore(formatter *OutputFormatter, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "not found", err)
	}
	return formatter.Fail(ExitCommandError, ErrCodeDatabase, "database error", err)
}

func outputRuleSetList(formatter *OutputFormatter, sets []ir.RuleSet, empty string) error {
	out := RuleSetListOutput{RuleSets: make([]RuleSetSummary, len(sets))}
	for i, rs := range sets {
		out.RuleSets[i] = RuleSetSummary{
			ID:         rs.ID,
			Name:       rs.Name,
			Owner:      rs.Owner,
			Category:   rs.Category,
			BlockCount: len(rs.Blocks),
			UseCount:   rs.UseCount,
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	if len(out.RuleSets) == 0 {
		fmt.Fprintln(formatter.Writer, empty)
		return nil
	}
	for _, s := range out.RuleSets {
		fmt.Fprintf(formatter.Writer, "%-38s %-32s %d blocks", s.ID, s.Name, s.BlockCount)
		if s.Category != "" {
			fmt.Fprintf(formatter.Writer, "  [%s, used %d]", s.Category, s.UseCount)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

func writeRuleSetText(formatter *OutputFormatter, rs ir.RuleSet) {
	w := formatter.Writer
	fmt.Fprintf(w, "%s  %s\n", rs.ID, rs.Name)
	if rs.Description != "" {
		fmt.Fprintf(w, "  %s\n", rs.Description)
	}
	fmt.Fprintf(w, "  owner: %s\n", rs.Owner)
	fmt.Fprintln(w)
	for _, b := range rs.Blocks {
		fmt.Fprintf(w, "  %-10s %s", b.Type, b.ID)
		if len(b.Connections) > 0 {
			fmt.Fprintf(w, " -> %s", strings.Join(b.Connections, ", "))
		}
		fmt.Fprintln(w)
	}
}
