package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	SessionOptions
	Scope string
}

// ListResult is the output of the list command.
type ListResult struct {
	Entity string    `json:"entity"`
	Rows   []RowView `json:"rows"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List one scope in order",
		Long: `List the rows of one scope in ascending key order with their ranks.

--scope must name every scope field of the entity; use null to select rows
whose scope field is NULL. Global entities take no --scope. Rows with a
NULL key are not part of the ordering and are not listed.

Examples:
  reorder list Course --scope '{"category_id":1}'
  reorder list Book`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	addSessionFlags(cmd, &opts.SessionOptions)
	cmd.Flags().StringVar(&opts.Scope, "scope", "{}", "scope field values as JSON")

	return cmd
}

func runList(opts *ListOptions, entity string, cmd *cobra.Command) error {
	sess, err := openSession(&opts.SessionOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	scope, err := parseObject("scope", opts.Scope)
	if err != nil {
		return sess.out.Fail(err)
	}

	rows, err := sess.engine.List(sess.ctx, entity, scope)
	if err != nil {
		return sess.out.Fail(err)
	}

	result := ListResult{Entity: entity, Rows: make([]RowView, 0, len(rows))}
	for i, row := range rows {
		result.Rows = append(result.Rows, viewOf(row, i+1))
	}

	return sess.out.Data(result, func(w io.Writer) {
		if len(result.Rows) == 0 {
			fmt.Fprintln(w, "(no rows)")
			return
		}
		fmt.Fprintf(w, "%-5s %-6s %-12s %s\n", "RANK", "ID", "KEY", "FIELDS")
		for _, r := range result.Rows {
			fmt.Fprintf(w, "%-5d %-6d %-12s %s\n", r.Rank, r.ID, formatKey(r.Key), formatFields(r.Fields))
		}
	})
}
