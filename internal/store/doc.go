// Package store provides SQLite-backed storage for ordered entity tables.
//
// The store holds:
//   - Entity tables: one per registered entity, created from its spec
//   - reorder_entities: registry of entity specs and their hashes
//   - reorder_moves: append-only journal of committed repositions
//
// # Ordering Columns
//
// Every entity table carries:
//   - id INTEGER PRIMARY KEY AUTOINCREMENT: never reused
//   - sequence REAL NULL: ordering key, NULL excludes the row from ordering
//
// plus an index on (scope fields..., sequence) so scope listings and neighbor
// windows are index scans.
//
// # Transactions
//
// All work happens inside WithTx. The DSN sets _txlock=immediate, so BEGIN
// takes the write lock up front and a read-then-write reposition cannot
// interleave with another writer. SQLITE_BUSY and SQLITE_LOCKED surface as
// ErrConflict (see ClassifyError).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Queries are built as queryir values and compiled by querysql; every
// listing is ordered by sequence ASC, id ASC.
package store
