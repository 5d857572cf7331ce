// Package queryir provides an abstract query representation for reads
// against entity tables.
//
// Every read the ordering engine performs (scope listings, neighbor
// windows, rank lookups, key assignment) is expressed as a Query value
// and compiled to SQL by internal/querysql. Keeping queries as data lets
// the engine stay free of SQL strings and lets tests assert on query shape.
//
// # Sealed Interfaces
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, so backends can switch
// exhaustively:
//
//	switch q := query.(type) {
//	case Select:
//	case Count:
//	case Max:
//	}
//
// # Values
//
// Literal values in Equals use ir.IRValue types. Comparing against
// ir.IRNull means IS NULL, so a row whose scope field is NULL belongs to
// the NULL scope group. The only float literals are ordering keys, carried
// by Precedes.
package queryir
