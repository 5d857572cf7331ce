// Package engine implements user-controlled ("drag-and-drop") ordering over
// rows of registered entity tables.
//
// ARCHITECTURE:
//
// Every row carries a floating-point ordering key (sequence). Rows whose
// declared scope fields are equal form one independent ordering. Moving a row
// writes one key: the midpoint between the two keys around its target rank.
// When repeated bisection leaves neighbors closer than the loosen threshold,
// the whole scope is rewritten as 1.0, 2.0, ... in the same transaction.
//
// Components:
//   - ScopeQuery (scope.go): filtered, ordered view of a row's peers
//   - SequenceAssigner (assign.go): store.InsertHook setting initial keys
//   - Reposition (reorder.go): rank lookup, neighbor window, midpoint
//   - Loosen (loosen.go): scope renormalization
//
// Every operation runs inside exactly one store transaction. The store takes
// the write lock at BEGIN, so a reposition never computes its window from a
// stale read. There is no application-level locking and no retry: a busy
// database surfaces as a CONCURRENCY_CONFLICT SequenceError.
//
// Ordering is always "sequence ASC, id ASC". Rows with a NULL sequence are
// outside every ordering.
//
// IDEMPOTENCY:
//
// Repositioning a row to the rank it already holds commits nothing and
// returns a nil MoveRecord. Every other reposition writes exactly one journal
// record in its own transaction, so the journal and the keys never disagree.
package engine
