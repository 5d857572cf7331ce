package harness

// Step operation names, as they appear in the trace.
const (
	OpCreate = "create"
	OpMove   = "move"
	OpLoosen = "loosen"
	OpRemove = "remove"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Step     int    `json:"step"`
	Op       string `json:"op"`
	Row      string `json:"row"`
	Entity   string `json:"entity"`
	Rank     int    `json:"rank,omitempty"`     // move target
	Key      string `json:"key,omitempty"`      // row's key after the step
	Token    string `json:"token,omitempty"`    // committed moves only
	Loosened bool   `json:"loosened,omitempty"` // move renormalized the scope
	Noop     bool   `json:"noop,omitempty"`     // move to the current rank
	Rows     int    `json:"rows,omitempty"`     // loosen: rows rewritten
	Error    string `json:"error,omitempty"`    // SequenceError code
}

// JournalEntry is a move journal record with the row id replaced by its
// scenario alias.
type JournalEntry struct {
	Token    string `json:"token"`
	Entity   string `json:"entity"`
	Row      string `json:"row"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	NewKey   string `json:"new_key"`
	Loosened bool   `json:"loosened"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains every executed step, setup included.
	Trace []TraceEvent `json:"trace"`

	// Journal is the move journal after the flow, oldest first.
	Journal []JournalEntry `json:"journal"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Journal: []JournalEntry{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an executed step to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
