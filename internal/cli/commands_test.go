package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reorder/internal/ir"
)

// cliEnv runs root commands against one scratch database.
type cliEnv struct {
	t  *testing.T
	db string
}

func newCLIEnv(t *testing.T) *cliEnv {
	return &cliEnv{t: t, db: filepath.Join(t.TempDir(), "reorder.db")}
}

// run executes the root command with --db and --specs appended.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--db", e.db, "--specs", testSpecsDir))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, out)
	return out
}

// list returns the JSON listing of a Course category.
func (e *cliEnv) list(category string) []RowView {
	e.t.Helper()
	out := e.mustRun("list", "Course", "--scope", `{"category_id":`+category+`}`, "--format", "json")

	var resp struct {
		Status string     `json:"status"`
		Data   ListResult `json:"data"`
	}
	require.NoError(e.t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(e.t, "ok", resp.Status)
	return resp.Data.Rows
}

func rowIDs(rows []RowView) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func rowKeys(rows []RowView) []float64 {
	keys := make([]float64, len(rows))
	for i, r := range rows {
		keys[i] = *r.Key
	}
	return keys
}

func TestInitCommand(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("init")
	assert.Contains(t, out, "Initialized "+env.db+" (2 entities)")
	assert.Contains(t, out, "Book -> books  scope: (global)  assign: scoped")
	assert.Contains(t, out, "Course -> courses  scope: category_id  assign: global")

	// Idempotent
	out = env.mustRun("init", "--format", "json")
	var resp struct {
		Data InitResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Entities, 2)
	assert.Equal(t, "Book", resp.Data.Entities[0].Name)
	assert.Equal(t, []string{}, resp.Data.Entities[0].Scope)
}

func TestInitMissingSpecs(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"init", "--db", filepath.Join(t.TempDir(), "x.db"), "--specs", "/nonexistent/specs"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out.String(), "failed to load specs")
}

func TestInitUnopenableDatabase(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"init", "--db", filepath.Join(t.TempDir(), "missing", "dir", "x.db"), "--specs", testSpecsDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out.String(), "failed to open database")
}

func TestAddAssignsIncreasingKeys(t *testing.T) {
	env := newCLIEnv(t)

	assert.Equal(t, "Created Course 1 (key 1)\n", env.mustRun("add", "Course", "--fields", `{"category_id":1,"title":"Intro"}`))
	assert.Equal(t, "Created Course 2 (key 2)\n", env.mustRun("add", "Course", "--fields", `{"category_id":1,"title":"Basics"}`))
	assert.Equal(t, "Created Course 3 (key 3)\n", env.mustRun("add", "Course", "--fields", `{"category_id":2}`))

	rows := env.list("1")
	assert.Equal(t, []int64{1, 2}, rowIDs(rows))
	assert.Equal(t, []float64{1, 2}, rowKeys(rows))
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, ir.IRString("Intro"), rows[0].Fields["title"])
}

func TestAddExplicitKeyAndJSON(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("add", "Course", "--fields", `{"category_id":1}`, "--key", "0.25", "--format", "json")
	var resp struct {
		Status string  `json:"status"`
		Data   RowView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(1), resp.Data.ID)
	require.NotNil(t, resp.Data.Key)
	assert.Equal(t, 0.25, *resp.Data.Key)
}

func TestAddRejectsBadFields(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("add", "Course", "--fields", `{not json`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := env.run("add", "Course", "--fields", `{"category_id":1.5}`)
	require.Error(t, err)
	assert.Contains(t, out, "floats are forbidden")

	out, err = env.run("add", "Lesson", "--fields", `{}`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "UNKNOWN_ENTITY")
}

func TestMoveCommand(t *testing.T) {
	env := newCLIEnv(t)
	for i := 0; i < 3; i++ {
		env.mustRun("add", "Course", "--fields", `{"category_id":1}`)
	}

	out := env.mustRun("move", "Course", "3", "1")
	assert.Equal(t, "Moved Course 3: rank 3 -> 1 (key 0.5)\n", out)

	rows := env.list("1")
	assert.Equal(t, []int64{3, 1, 2}, rowIDs(rows))
	assert.Equal(t, []float64{0.5, 1, 2}, rowKeys(rows))

	out = env.mustRun("move", "Course", "3", "1")
	assert.Equal(t, "Course 3 already at rank 1 (key 0.5)\n", out)

	out = env.mustRun("move", "Course", "3", "3", "--format", "json")
	var resp struct {
		Data MoveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Noop)
	require.NotNil(t, resp.Data.Move)
	assert.Equal(t, 1, resp.Data.Move.FromRank)
	assert.Equal(t, 3, resp.Data.Move.ToRank)
	assert.Equal(t, 2.0, resp.Data.Move.PrevKey)
	assert.Equal(t, 3.0, resp.Data.Move.NextKey)
	assert.Equal(t, 2.5, resp.Data.Move.NewKey)
	assert.NotEmpty(t, resp.Data.Move.Token)
}

func TestMoveCommandErrors(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "Course", "--fields", `{"category_id":1}`)
	env.mustRun("add", "Course", "--fields", `{"category_id":1}`)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"rank past end", []string{"move", "Course", "1", "3"}, ExitFailure, "INVALID_RANK"},
		{"rank zero", []string{"move", "Course", "1", "0"}, ExitFailure, "INVALID_RANK"},
		{"missing row", []string{"move", "Course", "99", "1"}, ExitFailure, "NOT_FOUND"},
		{"bad id", []string{"move", "Course", "abc", "1"}, ExitCommandError, "invalid row id"},
		{"bad rank", []string{"move", "Course", "1", "first"}, ExitCommandError, "invalid rank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}

	// Failed moves leave keys alone
	assert.Equal(t, []float64{1, 2}, rowKeys(env.list("1")))
}

func TestMoveErrorJSON(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "Course", "--fields", `{"category_id":1}`)

	out, err := env.run("move", "Course", "1", "2", "--format", "json")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_RANK", resp.Error.Code)
}

func TestLoosenCommand(t *testing.T) {
	env := newCLIEnv(t)
	for i := 0; i < 3; i++ {
		env.mustRun("add", "Course", "--fields", `{"category_id":1}`)
	}
	env.mustRun("move", "Course", "3", "1")
	env.mustRun("move", "Course", "2", "2")

	out := env.mustRun("loosen", "Course", "3")
	assert.Equal(t, "Renumbered 3 row(s); Course 3 now has key 1\n", out)

	rows := env.list("1")
	assert.Equal(t, []int64{3, 2, 1}, rowIDs(rows))
	assert.Equal(t, []float64{1, 2, 3}, rowKeys(rows))
}

func TestRemoveCommand(t *testing.T) {
	env := newCLIEnv(t)
	for i := 0; i < 3; i++ {
		env.mustRun("add", "Course", "--fields", `{"category_id":1}`)
	}

	assert.Equal(t, "Removed Course 2\n", env.mustRun("remove", "Course", "2"))

	rows := env.list("1")
	assert.Equal(t, []int64{1, 3}, rowIDs(rows))
	assert.Equal(t, []float64{1, 3}, rowKeys(rows), "keys are not compacted")
	assert.Equal(t, 2, rows[1].Rank)

	out, err := env.run("remove", "Course", "2")
	require.Error(t, err)
	assert.Contains(t, out, "NOT_FOUND")
}

func TestListCommand(t *testing.T) {
	env := newCLIEnv(t)

	assert.Equal(t, "(no rows)\n", env.mustRun("list", "Course", "--scope", `{"category_id":1}`))

	env.mustRun("add", "Course", "--fields", `{"category_id":1,"title":"Intro"}`)
	env.mustRun("add", "Course", "--fields", `{"category_id":null}`)

	out := env.mustRun("list", "Course", "--scope", `{"category_id":1}`)
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, `category_id=1 title="Intro"`)

	nullGroup := env.list("null")
	assert.Equal(t, []int64{2}, rowIDs(nullGroup))

	out, err := env.run("list", "Course")
	require.Error(t, err)
	assert.Contains(t, out, `missing scope field "category_id"`)

	out, err = env.run("list", "Course", "--scope", `{"category_id":1,"title":"x"}`)
	require.Error(t, err)
	assert.Contains(t, out, `"title" is not a scope field`)
}

func TestListGlobalEntity(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "Book", "--fields", `{"title":"A"}`)
	env.mustRun("add", "Book", "--fields", `{"title":"B"}`)
	env.mustRun("move", "Book", "2", "1")

	out := env.mustRun("list", "Book")
	assert.Regexp(t, `(?s)1\s+2\s+0\.5.*2\s+1\s+1\s`, out)
}

func TestHistoryCommand(t *testing.T) {
	env := newCLIEnv(t)
	for i := 0; i < 3; i++ {
		env.mustRun("add", "Course", "--fields", `{"category_id":1}`)
	}

	out := env.mustRun("history", "Course")
	assert.Contains(t, out, "(no moves)")

	env.mustRun("move", "Course", "3", "1")
	env.mustRun("move", "Course", "3", "1") // no-op, not journaled
	env.mustRun("move", "Course", "1", "3")

	out = env.mustRun("history", "Course")
	assert.Contains(t, out, "row 3: 3 -> 1 key 0.5")
	assert.Contains(t, out, "row 1: 2 -> 3 key 2.5")
	assert.Contains(t, out, "Moves:      2")
	assert.Contains(t, out, "Rows moved: 2")

	out = env.mustRun("history", "Course", "--limit", "1", "--format", "json")
	var resp struct {
		Data HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Moves, 1)
	assert.Equal(t, int64(1), resp.Data.Moves[0].RowID)

	out = env.mustRun("history", "Course", "--row", "3", "--format", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Moves, 1)
	assert.Equal(t, 1, resp.Data.Moves[0].ToRank)

	_, err := env.run("history", "Course", "--limit", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistoryStats(t *testing.T) {
	stats := historyStats([]ir.MoveRecord{
		{RowID: 1},
		{RowID: 1, Loosened: true},
		{RowID: 4},
	})
	assert.Equal(t, HistoryStats{Moves: 3, Loosened: 1, Rows: 2}, stats)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "01234567...89abcdef", truncateID("0123456789abcdef0123456789abcdef"))
}
