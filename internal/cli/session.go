package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/reorder/internal/engine"
	"github.com/roach88/reorder/internal/ir"
	"github.com/roach88/reorder/internal/store"
)

// Defaults for the --db and --specs flags.
const (
	DefaultDatabase = "reorder.db"
	DefaultSpecsDir = "specs"
)

// SessionOptions holds flags for commands that open the engine.
type SessionOptions struct {
	*RootOptions
	Database string
	SpecsDir string

	// Tokens overrides the operation token generator (for testing).
	// If nil, the engine default (UUIDv7) is used.
	Tokens engine.TokenGenerator
}

func addSessionFlags(cmd *cobra.Command, opts *SessionOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", DefaultDatabase, "path to SQLite database")
	cmd.Flags().StringVar(&opts.SpecsDir, "specs", DefaultSpecsDir, "directory of CUE entity specs")
}

// session is one command's view of the database: the store, the engine
// over the loaded specs, and the output formatter.
type session struct {
	ctx    context.Context
	stop   context.CancelFunc
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
	out    *OutputFormatter
}

// newLogger returns a text logger on w. Verbose enables debug records;
// otherwise only warnings and errors are written.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openSession loads specs, opens the database and builds the engine.
// Failures are reported through the formatter and returned as an
// ExitError with ExitCommandError.
func openSession(opts *SessionOptions, cmd *cobra.Command) (*session, error) {
	out := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.Verbose, cmd.ErrOrStderr())

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	// Ctrl-C cancels the in-flight transaction, which then rolls back.
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)

	logger.Debug("loading specs", "dir", opts.SpecsDir)
	specs, err := LoadEntities(opts.SpecsDir)
	if err != nil {
		stop()
		return nil, out.Fail(WrapExitError(ExitCommandError, "failed to load specs", err))
	}
	logger.Debug("specs loaded", "entities", len(specs))

	logger.Debug("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		stop()
		return nil, out.Fail(WrapExitError(ExitCommandError, "failed to open database", err))
	}

	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.Tokens != nil {
		engineOpts = append(engineOpts, engine.WithTokenGenerator(opts.Tokens))
	}
	eng, err := engine.New(ctx, st, specs, engineOpts...)
	if err != nil {
		st.Close()
		stop()
		return nil, out.Fail(WrapExitError(ExitCommandError, "failed to start engine", err))
	}

	return &session{
		ctx:    ctx,
		stop:   stop,
		store:  st,
		engine: eng,
		logger: logger,
		out:    out,
	}, nil
}

// Close closes the store and releases the signal handler.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
	s.stop()
}

// row loads entity row id from the positional id argument.
func (s *session) row(entity, idArg string) (ir.Row, error) {
	id, err := parseID(idArg)
	if err != nil {
		return ir.Row{}, s.out.Fail(err)
	}
	row, err := s.engine.Get(s.ctx, entity, id)
	if err != nil {
		return ir.Row{}, s.out.Fail(err)
	}
	return row, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid row id %q", arg))
	}
	return id, nil
}

// parseObject decodes a --fields or --scope JSON flag.
func parseObject(flag, data string) (ir.IRObject, error) {
	obj, err := ir.ParseObject(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("invalid --%s JSON", flag), err)
	}
	return obj, nil
}

// RowView is a row as printed by add and list.
type RowView struct {
	Rank   int         `json:"rank,omitempty"`
	ID     int64       `json:"id"`
	Key    *float64    `json:"key"`
	Fields ir.IRObject `json:"fields"`
}

func viewOf(row ir.Row, rank int) RowView {
	fields := row.Fields
	if fields == nil {
		fields = ir.IRObject{}
	}
	return RowView{Rank: rank, ID: row.ID, Key: row.Sequence, Fields: fields}
}

// formatKey renders a nullable key for text output.
func formatKey(key *float64) string {
	if key == nil {
		return "null"
	}
	return ir.FormatKey(*key)
}

// formatFields renders fields as sorted name=value pairs.
func formatFields(fields ir.IRObject) string {
	parts := make([]string, 0, len(fields))
	for _, k := range fields.SortedKeys() {
		b, err := ir.MarshalIRValue(fields[k])
		if err != nil {
			b = []byte("?")
		}
		parts = append(parts, k+"="+string(b))
	}
	return strings.Join(parts, " ")
}
