package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// SCHEMA — Describes the columns a dataset must carry
// ============================================================================
// The CSV helper resolves a header row against a Config before reading rows.
// The aggregator uses the keys to build its group-by queries.
// ============================================================================

// ErrMissingColumn is returned when a header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Config describes the shape of a dataset.
type Config struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions"`
	Measures   []MeasureMeta   `json:"measures"`
}

// DimensionMeta describes a string column used for grouping.
type DimensionMeta struct {
	Key         string `json:"key"` // exact CSV header name
	DisplayName string `json:"displayName"`
	Groupable   bool   `json:"groupable"`
	IsTemporal  bool   `json:"isTemporal,omitempty"`
}

// MeasureMeta describes a numeric column used for aggregation.
type MeasureMeta struct {
	Key                string `json:"key"` // exact CSV header name
	DisplayName        string `json:"displayName"`
	Integer            bool   `json:"integer,omitempty"` // values must parse as base-10 integers
	DefaultAggregation string `json:"defaultAggregation,omitempty"`
}

// Column names of the engagement export.
const (
	ColPlatform = "Platform"
	ColPostType = "PostType"
	ColDate     = "Date"
	ColLikes    = "Likes"
)

// SocialMedia is the schema of socialMedia.csv. Other columns in the file
// (AgeGroup, Comments, Shares, ...) are not part of it and are ignored.
func SocialMedia() Config {
	return Config{
		Name:        "social_media",
		Description: "Per-post engagement export",
		Dimensions: []DimensionMeta{
			{Key: ColPlatform, DisplayName: "Platform", Groupable: true},
			{Key: ColPostType, DisplayName: "Post Type", Groupable: true},
			{Key: ColDate, DisplayName: "Date", Groupable: true, IsTemporal: true},
		},
		Measures: []MeasureMeta{
			{Key: ColLikes, DisplayName: "Likes", Integer: true, DefaultAggregation: "avg"},
		},
	}
}

// GetDefaultMeasure returns the first measure's key, or "" if there is none.
func (c Config) GetDefaultMeasure() string {
	if len(c.Measures) > 0 {
		return c.Measures[0].Key
	}
	return ""
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// ============================================================================
// HEADER RESOLUTION
// ============================================================================

// Columns maps each schema key to its position in a CSV header.
type Columns map[string]int

// Resolve locates every dimension and measure of c in header. Names must
// match exactly; when a name repeats, the first occurrence wins. All
// missing columns are reported in one error wrapping ErrMissingColumn.
func (c Config) Resolve(header []string) (Columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff") // UTF-8 BOM from spreadsheet exports
		}
		if _, seen := pos[h]; !seen {
			pos[h] = i
		}
	}

	cols := make(Columns, len(c.Dimensions)+len(c.Measures))
	var missing []string
	for _, key := range append(c.DimensionKeys(), c.MeasureKeys()...) {
		i, ok := pos[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		cols[key] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}
