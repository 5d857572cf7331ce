package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// LoosenResult is the output of the loosen command.
type LoosenResult struct {
	Entity string   `json:"entity"`
	ID     int64    `json:"id"`
	Rows   int      `json:"rows"`
	Key    *float64 `json:"key"`
}

// NewLoosenCommand creates the loosen command.
func NewLoosenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "loosen <entity> <id>",
		Short: "Renumber a row's scope to 1..n",
		Long: `Rewrite every key in the row's scope to 1, 2, ..., n in the current
order. Ranks do not change. move does this on its own when neighboring keys
get too close; loosen forces it.

Example:
  reorder loosen Course 3`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoosen(opts, args[0], args[1], cmd)
		},
	}

	addSessionFlags(cmd, opts)
	return cmd
}

func runLoosen(opts *SessionOptions, entity, idArg string, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	row, err := sess.row(entity, idArg)
	if err != nil {
		return err
	}

	n, err := sess.engine.Loosen(sess.ctx, &row)
	if err != nil {
		return sess.out.Fail(err)
	}

	result := LoosenResult{Entity: entity, ID: row.ID, Rows: n, Key: row.Sequence}
	return sess.out.Data(result, func(w io.Writer) {
		fmt.Fprintf(w, "Renumbered %d row(s); %s %d now has key %s\n", n, entity, row.ID, formatKey(row.Sequence))
	})
}
