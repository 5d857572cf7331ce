package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/reorder/internal/ir"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	SessionOptions
	Limit int
	Row   int64 // optional - filter to one row
}

// HistoryResult holds the journal records for an entity.
type HistoryResult struct {
	Entity string          `json:"entity"`
	Moves  []ir.MoveRecord `json:"moves"`
	Stats  HistoryStats    `json:"stats"`
}

// HistoryStats summarizes a history listing.
type HistoryStats struct {
	Moves    int `json:"moves"`
	Loosened int `json:"loosened"`
	Rows     int `json:"rows"` // distinct rows moved
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{SessionOptions: SessionOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "history <entity>",
		Short: "Show the move journal",
		Long: `Show committed moves for an entity, oldest first.

Each record holds the operation token, the row, its old and new rank, the
neighbor keys it landed between, the committed key and whether the scope
was renumbered. No-op moves are not journaled.

Examples:
  reorder history Course
  reorder history Course --row 3 --limit 10
  reorder history Course --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	addSessionFlags(cmd, &opts.SessionOptions)
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the N most recent moves (0 = all)")
	cmd.Flags().Int64Var(&opts.Row, "row", 0, "filter to one row id")

	return cmd
}

func runHistory(opts *HistoryOptions, entity string, cmd *cobra.Command) error {
	if opts.Limit < 0 {
		return newFormatter(opts.RootOptions, cmd).Fail(NewExitError(ExitCommandError, "--limit must not be negative"))
	}

	sess, err := openSession(&opts.SessionOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	moves, err := sess.engine.History(sess.ctx, entity, opts.Row, opts.Limit)
	if err != nil {
		return sess.out.Fail(err)
	}

	result := HistoryResult{Entity: entity, Moves: moves, Stats: historyStats(moves)}
	return sess.out.Data(result, func(w io.Writer) {
		outputHistoryText(w, result, opts.Verbose)
	})
}

func historyStats(moves []ir.MoveRecord) HistoryStats {
	stats := HistoryStats{Moves: len(moves)}
	rows := make(map[int64]bool)
	for _, m := range moves {
		if m.Loosened {
			stats.Loosened++
		}
		rows[m.RowID] = true
	}
	stats.Rows = len(rows)
	return stats
}

func outputHistoryText(w io.Writer, result HistoryResult, verbose bool) {
	fmt.Fprintf(w, "History for %s\n\n", result.Entity)

	fmt.Fprintln(w, "=== Moves ===")
	if len(result.Moves) == 0 {
		fmt.Fprintln(w, "  (no moves)")
	}
	for _, m := range result.Moves {
		marker := ""
		if m.Loosened {
			marker = " [renumbered]"
		}
		fmt.Fprintf(w, "  [%d] row %d: %d -> %d key %s%s\n",
			m.ID, m.RowID, m.FromRank, m.ToRank, ir.FormatKey(m.NewKey), marker)
		if verbose {
			fmt.Fprintf(w, "       between %s and %s\n", ir.FormatKey(m.PrevKey), ir.FormatKey(m.NextKey))
			fmt.Fprintf(w, "       token: %s scope: %s\n", m.Token, truncateID(m.ScopeHash))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Moves:      %d\n", result.Stats.Moves)
	fmt.Fprintf(w, "  Renumbered: %d\n", result.Stats.Loosened)
	fmt.Fprintf(w, "  Rows moved: %d\n", result.Stats.Rows)
}

// truncateID shortens a long hash or token for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
