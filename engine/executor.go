package engine

import (
	"fmt"
)

// ============================================================================
// EXECUTOR — Validation + Dispatch
// ============================================================================
// Entry point: Execute(spec, view, opts...)
//
// Pipeline:
//   1. Resolve the measure (spec → default option)
//   2. Check measure, group-by keys and aggregation against the view
//   3. Group, aggregate, round, sort, limit
//   4. Return Result
//
// Zero data copy — the engine reads caller data through RecordView.
// ============================================================================

// Execute runs a QuerySpec against a RecordView.
//
// Options:
//   - WithPrecision(n) — decimal places for aggregates (default 2)
//   - WithDefaultMeasure(key) — sets the measure when QuerySpec.Measure is empty
//   - WithLogger(l) — structured logs for each run
func Execute(spec QuerySpec, view RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	if spec.Measure == "" {
		spec.Measure = cfg.DefaultMeasure
	}
	if spec.Aggregation == "" {
		spec.Aggregation = AggAvg
	}
	if spec.SortBy == "" {
		spec.SortBy = SortKeyAsc
	}
	if err := validate(spec, view); err != nil {
		return nil, fmt.Errorf("query %q: %w", spec.Name, err)
	}

	log := cfg.Log.With("query", spec.Name)
	log.Debug("aggregating",
		"records", view.Len(),
		"group_by", spec.GroupBy,
		"measure", spec.Measure,
		"aggregation", spec.Aggregation,
		"value_column", spec.ValueColumn,
		"precision", cfg.Precision,
	)

	groups, dropped := GroupAndAggregate(view, spec, cfg.Precision)

	log.Debug("aggregated", "groups", len(groups), "dropped_missing_key", dropped)

	return &Result{
		Spec:      spec,
		Groups:    groups,
		Precision: cfg.Precision,
		Records:   view.Len(),
		Dropped:   dropped,
	}, nil
}

// validate checks a spec against the keys a view exposes. An empty view has
// nothing to check against and yields no groups.
func validate(spec QuerySpec, view RecordView) error {
	switch spec.Aggregation {
	case AggAvg, AggSum, AggCount, AggMin, AggMax:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAggregation, spec.Aggregation)
	}
	if view.Len() == 0 {
		return nil
	}
	if spec.Aggregation != AggCount && !HasMeasure(view, spec.Measure) {
		return fmt.Errorf("%w: %s", ErrUnknownMeasure, spec.Measure)
	}
	for _, dim := range spec.GroupBy {
		if !HasDimension(view, dim) {
			return fmt.Errorf("%w: %s", ErrUnknownDimension, dim)
		}
	}
	return nil
}
