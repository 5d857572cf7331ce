package engine

import "github.com/roach88/reorder/internal/ir"

// Sequenced is the capability the engine needs from an ordered value.
// *ir.Row implements it; application types can too, as long as RowID
// returns the store-assigned id.
type Sequenced interface {
	EntityName() string
	RowID() int64
	SequenceKey() (float64, bool)
	SetSequence(key float64)
}

var _ Sequenced = (*ir.Row)(nil)
