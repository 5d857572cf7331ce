package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reorder/internal/ir"
)

// EntityView describes one registered entity.
type EntityView struct {
	Name   string        `json:"name"`
	Table  string        `json:"table"`
	Scope  []string      `json:"scope"`
	Assign ir.AssignMode `json:"assign"`
}

// InitResult is the output of the init command.
type InitResult struct {
	Database string       `json:"database"`
	Entities []EntityView `json:"entities"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create entity tables",
		Long: `Create the table and ordering index for every entity in the specs
directory, creating the database if it does not exist.

init is idempotent. Re-running it with a spec whose table or scope changed
fails: existing tables are never migrated.

Examples:
  reorder init --db ./reorder.db --specs ./specs
  reorder init --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	addSessionFlags(cmd, opts)
	return cmd
}

func runInit(opts *SessionOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	specs, err := sess.store.Entities(sess.ctx)
	if err != nil {
		return sess.out.Fail(WrapExitError(ExitCommandError, "failed to read entities", err))
	}

	result := InitResult{Database: opts.Database, Entities: make([]EntityView, 0, len(specs))}
	for _, spec := range specs {
		scope := spec.Scope
		if scope == nil {
			scope = []string{}
		}
		result.Entities = append(result.Entities, EntityView{
			Name:   spec.Name,
			Table:  spec.Table,
			Scope:  scope,
			Assign: spec.AssignModeOrDefault(),
		})
	}

	return sess.out.Data(result, func(w io.Writer) {
		fmt.Fprintf(w, "Initialized %s (%d entities)\n", opts.Database, len(result.Entities))
		for _, e := range result.Entities {
			scope := "(global)"
			if len(e.Scope) > 0 {
				scope = strings.Join(e.Scope, ", ")
			}
			fmt.Fprintf(w, "  %s -> %s  scope: %s  assign: %s\n", e.Name, e.Table, scope, e.Assign)
		}
	})
}
