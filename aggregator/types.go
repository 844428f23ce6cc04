package aggregator

import (
	"github.com/spektr-org/socialavg/engine"
	"github.com/spektr-org/socialavg/schema"
)

// SourceRecord is one row of socialMedia.csv.
type SourceRecord struct {
	Platform string
	PostType string
	Date     string
	Likes    int64
}

// SourceTable is the loaded input. It is never modified after Load.
type SourceTable struct {
	records []SourceRecord
}

// NewSourceTable copies records into a table.
func NewSourceTable(records []SourceRecord) *SourceTable {
	return &SourceTable{records: append([]SourceRecord(nil), records...)}
}

// Len returns the number of rows.
func (t *SourceTable) Len() int { return len(t.records) }

// Record returns row i.
func (t *SourceTable) Record(i int) SourceRecord { return t.records[i] }

// view exposes the table to the engine without copying.
func (t *SourceTable) view() engine.RecordView {
	return sourceAdapter.Bind(t.records)
}

var sourceAdapter = engine.NewDomainAdapter[SourceRecord]().
	Dimension(schema.ColPlatform, func(r SourceRecord) string { return r.Platform }).
	Dimension(schema.ColPostType, func(r SourceRecord) string { return r.PostType }).
	Dimension(schema.ColDate, func(r SourceRecord) string { return r.Date }).
	IntMeasure(schema.ColLikes, func(r SourceRecord) int64 { return r.Likes })

// ============================================================================
// SUMMARIES
// ============================================================================

// AvgLikesColumn is the output name of the averaged Likes column.
const AvgLikesColumn = "AvgLikes"

// PlatformPostTypeSummary is the mean Likes of one (Platform, PostType) pair.
type PlatformPostTypeSummary struct {
	Platform string  `json:"Platform"`
	PostType string  `json:"PostType"`
	AvgLikes float64 `json:"AvgLikes"`

	text string // exact rendering of AvgLikes, when computed
}

// DateSummary is the mean Likes of one Date.
type DateSummary struct {
	Date     string  `json:"Date"`
	AvgLikes float64 `json:"AvgLikes"`

	text string
}

// avgText prints an average with 2 decimals, preferring the exact text
// carried from the engine over the float.
func avgText(text string, v float64) string {
	if text != "" {
		return text
	}
	return engine.FormatValue(v, engine.DefaultPrecision)
}

// PlatformPostTypeTable is the ordered output of AggregateByPlatformPostType.
type PlatformPostTypeTable []PlatformPostTypeSummary

// Header implements engine.Tabular.
func (t PlatformPostTypeTable) Header() []string {
	return []string{schema.ColPlatform, schema.ColPostType, AvgLikesColumn}
}

// Records implements engine.Tabular.
func (t PlatformPostTypeTable) Records() [][]string {
	rows := make([][]string, len(t))
	for i, s := range t {
		rows[i] = []string{s.Platform, s.PostType, avgText(s.text, s.AvgLikes)}
	}
	return rows
}

// DateTable is the ordered output of AggregateByDate.
type DateTable []DateSummary

// Header implements engine.Tabular.
func (t DateTable) Header() []string {
	return []string{schema.ColDate, AvgLikesColumn}
}

// Records implements engine.Tabular.
func (t DateTable) Records() [][]string {
	rows := make([][]string, len(t))
	for i, s := range t {
		rows[i] = []string{s.Date, avgText(s.text, s.AvgLikes)}
	}
	return rows
}
