package ir

// MoveRecord is one committed reposition, as kept in the move journal.
// Written in the same transaction as the move it describes.
type MoveRecord struct {
	ID            int64   `json:"id"`    // Auto-increment (journal order)
	Token         string  `json:"token"` // Operation token (UUIDv7 in production)
	Entity        string  `json:"entity"`
	RowID         int64   `json:"row_id"`
	ScopeHash     string  `json:"scope_hash"`
	FromRank      int     `json:"from_rank"`
	ToRank        int     `json:"to_rank"`
	PrevKey       float64 `json:"prev_key"`
	NextKey       float64 `json:"next_key"`
	NewKey        float64 `json:"new_key"` // Committed key (post-loosen when Loosened)
	Loosened      bool    `json:"loosened"`
	EngineVersion string  `json:"engine_version"`
}
