// Package ir provides the shared type definitions for reorder.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - User field values are sealed IRValues (string, int, bool, null).
//     Floats are forbidden in user fields; the only float in the system is
//     the ordering key itself (Row.Sequence).
//   - Scope string values are NFC-normalized before they are stored or
//     compared, so visually identical scope keys share one ordering.
//   - All JSON tags use snake_case.
package ir
