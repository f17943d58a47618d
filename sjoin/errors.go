package sjoin

import "errors"

// Error kinds surfaced by the join adapter and the aggregator. All errors
// returned by this package wrap one of these sentinels, so callers can
// classify failures with errors.Is.
var (
	// ErrSchemaMismatch indicates a requested column is absent from the
	// input collection it was expected in.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnsupportedPredicate indicates the requested binary spatial
	// predicate is not one the geometry engine evaluates.
	ErrUnsupportedPredicate = errors.New("unsupported predicate")

	// ErrEmptyGroupKey indicates a pair row carried an empty grouping key.
	// Grouping by a null point identity is undefined.
	ErrEmptyGroupKey = errors.New("empty group key")

	// ErrColumnCountMismatch indicates groups produced more geometry values
	// than the declared maximum arity allows, so the result cannot be
	// shaped into a single table.
	ErrColumnCountMismatch = errors.New("column count mismatch")
)
