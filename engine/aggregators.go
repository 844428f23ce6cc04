package engine

import (
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → round → sort → limit.
// It also returns how many rows were dropped for a missing key.
func GroupAndAggregate(view RecordView, spec QuerySpec, precision int) ([]Group, int) {
	if view.Len() == 0 {
		return nil, 0
	}

	// 1. Group
	var groups []Group
	dropped := 0
	if len(spec.GroupBy) == 0 {
		groups = []Group{{View: view}}
	} else {
		groups, dropped = groupByKeys(view, spec.GroupBy, spec.DropMissingKeys)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i], spec.Measure, spec.Aggregation, precision)
	}

	// 3. Sort
	SortGroups(groups, spec.SortBy)

	// 4. Limit
	if spec.Limit > 0 && len(groups) > spec.Limit {
		groups = groups[:spec.Limit]
	}

	return groups, dropped
}

// ============================================================================
// GROUPING
// ============================================================================

// groupByKeys partitions the view on the tuple of dimension values.
// Groups come back in first-appearance order; SortGroups orders them.
func groupByKeys(view RecordView, dimensions []string, dropMissing bool) ([]Group, int) {
	grouped := make(map[string][]int)
	keys := make(map[string][]string)
	order := make([]string, 0)
	dropped := 0

rows:
	for i := 0; i < view.Len(); i++ {
		vals := make([]string, len(dimensions))
		for d, dim := range dimensions {
			vals[d] = view.Dimension(i, dim)
			if dropMissing && vals[d] == "" {
				dropped++
				continue rows
			}
		}
		composite := compositeKey(vals)
		if _, exists := grouped[composite]; !exists {
			order = append(order, composite)
			keys[composite] = vals
		}
		grouped[composite] = append(grouped[composite], i)
	}

	groups := make([]Group, 0, len(order))
	for _, composite := range order {
		groups = append(groups, Group{
			Keys: keys[composite],
			View: newSubView(view, grouped[composite]),
		})
	}
	return groups, dropped
}

// compositeKey length-prefixes each value so no field content can make two
// different tuples collide.
func compositeKey(vals []string) string {
	var b strings.Builder
	for _, v := range vals {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, aggregation string, precision int) {
	group.Count = group.View.Len()
	if group.Count == 0 {
		return
	}

	switch aggregation {
	case AggAvg:
		exact, approx := sumExact(group.View, measure)
		group.setQuotient(exact, approx, group.Count, precision)
	case AggCount:
		group.setQuotient(new(big.Rat).SetInt64(int64(group.Count)), float64(group.Count), 1, precision)
	case AggMax:
		exact, approx := floatRat(MaxMeasure(group.View, measure))
		group.setQuotient(exact, approx, 1, precision)
	case AggMin:
		exact, approx := floatRat(MinMeasure(group.View, measure))
		group.setQuotient(exact, approx, 1, precision)
	default:
		exact, approx := sumExact(group.View, measure)
		group.setQuotient(exact, approx, 1, precision)
	}
}

// setQuotient stores num/den rounded to precision. approx is num as a
// float64 and is used alone when exact is nil or precision is negative.
func (g *Group) setQuotient(exact *big.Rat, approx float64, den int, precision int) {
	if exact == nil || precision < 0 {
		g.Value = approx / float64(den)
		return
	}
	g.Exact = RoundRat(new(big.Rat).Quo(exact, new(big.Rat).SetInt64(int64(den))), precision)
	g.Value, _ = g.Exact.Float64()
}

// sumExact totals a measure as an exact rational. Integer measures of an
// IntegerView are summed in big.Int; anything else is summed as float64.
func sumExact(view RecordView, measure string) (*big.Rat, float64) {
	if iv, ok := view.(IntegerView); ok {
		total := new(big.Int)
		exact := true
		for i := 0; i < view.Len() && exact; i++ {
			var n int64
			n, exact = iv.IntegerMeasure(i, measure)
			total.Add(total, big.NewInt(n))
		}
		if exact {
			r := new(big.Rat).SetInt(total)
			f, _ := r.Float64()
			return r, f
		}
	}
	return floatRat(SumMeasure(view, measure))
}

// floatRat is f as an exact rational, or nil for NaN and infinities.
func floatRat(f float64) (*big.Rat, float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, f
	}
	return new(big.Rat).SetFloat64(f), f
}

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// MaxMeasure returns the largest value of a named measure.
func MaxMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	m := math.Inf(-1)
	for i := 0; i < n; i++ {
		if v := view.Measure(i, measure); v > m {
			m = v
		}
	}
	return m
}

// MinMeasure returns the smallest value of a named measure.
func MinMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	m := math.Inf(1)
	for i := 0; i < n; i++ {
		if v := view.Measure(i, measure); v < m {
			m = v
		}
	}
	return m
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts aggregate groups by the specified sort mode.
// Key comparison is byte-wise, component by component, so ("A","b") sorts
// before ("B","a") and "Z" before "a".
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case SortValueDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case SortValueAsc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case SortKeyDesc:
		sort.SliceStable(groups, func(i, j int) bool { return compareKeys(groups[i].Keys, groups[j].Keys) > 0 })
	default:
		sort.SliceStable(groups, func(i, j int) bool { return compareKeys(groups[i].Keys, groups[j].Keys) < 0 })
	}
}

func compareKeys(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// UniqueValues returns distinct values for a dimension across a view,
// in first-appearance order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}
