package engine

import (
	"errors"
	"math/big"
)

// ============================================================================
// ENGINE TYPES — Grouped Aggregation over Record Views
// ============================================================================
// QuerySpec describes one grouped aggregation; Result carries its groups.
//
// Dependency: engine has no dependency outside this module except zap (via
// internal/logger).
// ============================================================================

var (
	// ErrUnknownMeasure is returned when a QuerySpec names a measure the view does not expose.
	ErrUnknownMeasure = errors.New("unknown measure")
	// ErrUnknownDimension is returned when a QuerySpec groups by a dimension the view does not expose.
	ErrUnknownDimension = errors.New("unknown dimension")
	// ErrUnknownAggregation is returned for aggregation names Execute does not implement.
	ErrUnknownAggregation = errors.New("unknown aggregation")
)

// ============================================================================
// QUERYSPEC — What to compute
// ============================================================================

// Aggregation names understood by Execute.
const (
	AggAvg   = "avg"
	AggSum   = "sum"
	AggCount = "count"
	AggMin   = "min"
	AggMax   = "max"
)

// Sort modes understood by SortGroups.
const (
	SortKeyAsc    = "key_asc"
	SortKeyDesc   = "key_desc"
	SortValueAsc  = "value_asc"
	SortValueDesc = "value_desc"
)

// QuerySpec defines one grouped aggregation.
type QuerySpec struct {
	Name        string   `json:"name"`        // used in logs only
	GroupBy     []string `json:"groupBy"`     // dimension keys, in key order: ["Platform", "PostType"]
	Measure     string   `json:"measure"`     // measure to aggregate (empty → default)
	Aggregation string   `json:"aggregation"` // "avg", "sum", "count", "min", "max"
	ValueColumn string   `json:"valueColumn"` // output column name for the aggregate, e.g. "AvgLikes"
	SortBy      string   `json:"sortBy"`      // empty → "key_asc"
	Limit       int      `json:"limit"`       // 0 = all

	// DropMissingKeys leaves out rows whose value for any GroupBy
	// dimension is empty, the way a data-frame groupby drops NaN keys.
	DropMissingKeys bool `json:"dropMissingKeys"`
}

// ============================================================================
// GROUP / RESULT
// ============================================================================

// Group is one distinct combination of GroupBy values and its aggregate.
type Group struct {
	Keys  []string   `json:"keys"`  // one value per GroupBy dimension
	Value float64    `json:"value"` // aggregate, already rounded
	Count int        `json:"count"`
	Exact *big.Rat   `json:"-"` // Value before float conversion; nil if not finite or precision < 0
	View  RecordView `json:"-"` // records in this group (zero-copy)
}

// Text prints the aggregate with exactly precision decimals. It reads Exact
// when set, so integer averages past 2^53 print without float error.
func (g Group) Text(precision int) string {
	if g.Exact != nil && precision >= 0 {
		return g.Exact.FloatString(precision)
	}
	return FormatValue(g.Value, precision)
}

// Result is the output of Execute.
type Result struct {
	Spec      QuerySpec `json:"spec"`
	Groups    []Group   `json:"groups"`
	Precision int       `json:"precision"`
	Records   int       `json:"records"` // rows in the view
	Dropped   int       `json:"dropped"` // rows left out for a missing key
}
