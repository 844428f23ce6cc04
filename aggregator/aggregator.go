package aggregator

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spektr-org/socialavg/engine"
	"github.com/spektr-org/socialavg/helpers"
	"github.com/spektr-org/socialavg/internal/logger"
	"github.com/spektr-org/socialavg/schema"
)

// ============================================================================
// AGGREGATOR — load → aggregate → write
// ============================================================================

// Rows with an empty or missing-marker key are left out of each grouping
// they cannot be placed in. Measure is taken from the schema default.
var (
	byPlatformPostType = engine.QuerySpec{
		Name:            "platform_post_type",
		GroupBy:         []string{schema.ColPlatform, schema.ColPostType},
		Aggregation:     engine.AggAvg,
		ValueColumn:     AvgLikesColumn,
		SortBy:          engine.SortKeyAsc,
		DropMissingKeys: true,
	}
	byDate = engine.QuerySpec{
		Name:            "date",
		GroupBy:         []string{schema.ColDate},
		Aggregation:     engine.AggAvg,
		ValueColumn:     AvgLikesColumn,
		SortBy:          engine.SortKeyAsc,
		DropMissingKeys: true,
	}
)

// Load reads the engagement export at path. The file is read fully and
// closed before Load returns. A missing file, a missing required column or a
// Likes value that is not an integer fails the whole load. Likes are kept
// as exact int64 values.
func Load(path string) (*SourceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	records, err := helpers.ParseCSV(f, schema.SocialMedia())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	rows := make([]SourceRecord, len(records))
	for i, rec := range records {
		rows[i] = SourceRecord{
			Platform: rec.Dimensions[schema.ColPlatform],
			PostType: rec.Dimensions[schema.ColPostType],
			Date:     rec.Dimensions[schema.ColDate],
			Likes:    rec.Integers[schema.ColLikes],
		}
	}
	return &SourceTable{records: rows}, nil
}

// AggregateByPlatformPostType returns mean Likes per (Platform, PostType),
// rounded to 2 places, ordered by Platform then PostType.
func AggregateByPlatformPostType(t *SourceTable) (PlatformPostTypeTable, error) {
	return aggregateByPlatformPostType(t, logger.Nop())
}

// AggregateByDate returns mean Likes per Date, rounded to 2 places, ordered
// by Date.
func AggregateByDate(t *SourceTable) (DateTable, error) {
	return aggregateByDate(t, logger.Nop())
}

func aggregateByPlatformPostType(t *SourceTable, log *logger.Logger) (PlatformPostTypeTable, error) {
	res, err := execute(byPlatformPostType, t, log)
	if err != nil {
		return nil, err
	}
	out := make(PlatformPostTypeTable, len(res.Groups))
	for i, g := range res.Groups {
		out[i] = PlatformPostTypeSummary{Platform: g.Keys[0], PostType: g.Keys[1], AvgLikes: g.Value, text: g.Text(res.Precision)}
	}
	return out, nil
}

func aggregateByDate(t *SourceTable, log *logger.Logger) (DateTable, error) {
	res, err := execute(byDate, t, log)
	if err != nil {
		return nil, err
	}
	out := make(DateTable, len(res.Groups))
	for i, g := range res.Groups {
		out[i] = DateSummary{Date: g.Keys[0], AvgLikes: g.Value, text: g.Text(res.Precision)}
	}
	return out, nil
}

func execute(spec engine.QuerySpec, t *SourceTable, log *logger.Logger) (*engine.Result, error) {
	return engine.Execute(spec, t.view(),
		engine.WithPrecision(engine.DefaultPrecision),
		engine.WithDefaultMeasure(schema.SocialMedia().GetDefaultMeasure()),
		engine.WithLogger(log),
	)
}

// Write serializes a summary to path as CSV: header row, then one row per
// entry, no index column. The file is created or truncated.
func Write(t engine.Tabular, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
