package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// RemoveResult is the output of the remove command.
type RemoveResult struct {
	Entity string `json:"entity"`
	ID     int64  `json:"id"`
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remove <entity> <id>",
		Short: "Delete a row",
		Long: `Delete a row. The remaining rows keep their keys; ranks after the
removed row close up by one.

Example:
  reorder remove Course 3`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(opts, args[0], args[1], cmd)
		},
	}

	addSessionFlags(cmd, opts)
	return cmd
}

func runRemove(opts *SessionOptions, entity, idArg string, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	row, err := sess.row(entity, idArg)
	if err != nil {
		return err
	}
	if err := sess.engine.Remove(sess.ctx, &row); err != nil {
		return sess.out.Fail(err)
	}

	return sess.out.Data(RemoveResult{Entity: entity, ID: row.ID}, func(w io.Writer) {
		fmt.Fprintf(w, "Removed %s %d\n", entity, row.ID)
	})
}
