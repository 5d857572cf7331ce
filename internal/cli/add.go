package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reorder/internal/ir"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	SessionOptions
	Fields string
	Key    float64
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "add <entity>",
		Short: "Create a row",
		Long: `Create a row and print its id and ordering key.

Without --key the key is assigned per the entity's assign mode: "global"
uses max(id)+1 over the whole table, "scoped" uses one past the largest key
in the row's scope. Either way a new row lands after its peers.

Examples:
  reorder add Course --fields '{"category_id":1,"title":"Intro"}'
  reorder add Course --fields '{"category_id":1}' --key 0.25`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, args[0], cmd)
		},
	}

	addSessionFlags(cmd, &opts.SessionOptions)
	cmd.Flags().StringVar(&opts.Fields, "fields", "{}", "row fields as JSON")
	cmd.Flags().Float64Var(&opts.Key, "key", 0, "explicit ordering key (skips assignment)")

	return cmd
}

func runAdd(opts *AddOptions, entity string, cmd *cobra.Command) error {
	sess, err := openSession(&opts.SessionOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	fields, err := parseObject("fields", opts.Fields)
	if err != nil {
		return sess.out.Fail(err)
	}

	row := &ir.Row{Entity: entity, Fields: fields}
	if cmd.Flags().Changed("key") {
		row.Sequence = ir.Key(opts.Key)
	}
	if err := sess.engine.Create(sess.ctx, row); err != nil {
		return sess.out.Fail(err)
	}

	view := viewOf(*row, 0)
	return sess.out.Data(view, func(w io.Writer) {
		fmt.Fprintf(w, "Created %s %d (key %s)\n", entity, row.ID, formatKey(row.Sequence))
	})
}
