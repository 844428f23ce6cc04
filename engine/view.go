package engine

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns caller data. It reads through this interface.
//
// Implementations:
//   DomainView[T]  — typed structs read through registered accessors
//   SubView        — one group's rows (indices into a parent view)
// ============================================================================

// RecordView provides indexed access to a dataset.
// The engine calls Dimension/Measure in tight loops — keep implementations fast.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

// IntegerView is implemented by views that can read a measure as an exact
// integer. Sums over such measures never pass through float64.
type IntegerView interface {
	IntegerMeasure(index int, key string) (int64, bool)
}

// ============================================================================
// SUB VIEW
// ============================================================================

// SubView is the subset of a parent RecordView that fell into one group.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) IntegerMeasure(i int, key string) (int64, bool) {
	iv, ok := v.parent.(IntegerView)
	if !ok || i < 0 || i >= len(v.indices) {
		return 0, false
	}
	return iv.IntegerMeasure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER — typed structs as a RecordView
// ============================================================================
//
//	adapter := engine.NewDomainAdapter[Post]().
//	    Dimension("Platform", func(p Post) string { return p.Platform }).
//	    IntMeasure("Likes", func(p Post) int64 { return p.Likes })
//
//	result, _ := engine.Execute(spec, adapter.Bind(posts))
//
// Accessors are registered once; Bind is cheap and holds the slice as-is.
// ============================================================================

// DomainAdapter maps field names of T to accessor functions.
type DomainAdapter[T any] struct {
	fields accessors[T]
}

type accessors[T any] struct {
	dimKeys []string
	mesKeys []string
	dims    map[string]func(T) string
	meas    map[string]func(T) float64
	ints    map[string]func(T) int64
}

// NewDomainAdapter creates an adapter with no fields.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{fields: accessors[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
		ints: make(map[string]func(T) int64),
	}}
}

// Dimension registers (or replaces) a string field.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, ok := a.fields.dims[key]; !ok {
		a.fields.dimKeys = append(a.fields.dimKeys, key)
	}
	a.fields.dims[key] = fn
	return a
}

// Measure registers (or replaces) a numeric field.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	a.addMeasureKey(key)
	delete(a.fields.ints, key)
	a.fields.meas[key] = fn
	return a
}

// IntMeasure registers (or replaces) an integer field. It is also readable
// through Measure as a float64.
func (a *DomainAdapter[T]) IntMeasure(key string, fn func(T) int64) *DomainAdapter[T] {
	a.addMeasureKey(key)
	delete(a.fields.meas, key)
	a.fields.ints[key] = fn
	return a
}

func (a *DomainAdapter[T]) addMeasureKey(key string) {
	if !containsKey(a.fields.mesKeys, key) {
		a.fields.mesKeys = append(a.fields.mesKeys, key)
	}
}

// Bind exposes rows through the registered accessors.
func (a *DomainAdapter[T]) Bind(rows []T) RecordView {
	return &DomainView[T]{rows: rows, fields: &a.fields}
}

// DomainView reads T values via a DomainAdapter's accessors.
type DomainView[T any] struct {
	rows   []T
	fields *accessors[T]
}

func (v *DomainView[T]) Len() int { return len(v.rows) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	fn, ok := v.fields.dims[key]
	if !ok || i < 0 || i >= len(v.rows) {
		return ""
	}
	return fn(v.rows[i])
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.rows) {
		return 0
	}
	if fn, ok := v.fields.meas[key]; ok {
		return fn(v.rows[i])
	}
	if fn, ok := v.fields.ints[key]; ok {
		return float64(fn(v.rows[i]))
	}
	return 0
}

func (v *DomainView[T]) IntegerMeasure(i int, key string) (int64, bool) {
	fn, ok := v.fields.ints[key]
	if !ok || i < 0 || i >= len(v.rows) {
		return 0, false
	}
	return fn(v.rows[i]), true
}

func (v *DomainView[T]) DimensionKeys() []string { return v.fields.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.fields.mesKeys }

// HasDimension reports whether the view exposes the dimension key.
func HasDimension(view RecordView, key string) bool {
	return containsKey(view.DimensionKeys(), key)
}

// HasMeasure reports whether the view exposes the measure key.
func HasMeasure(view RecordView, key string) bool {
	return containsKey(view.MeasureKeys(), key)
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
