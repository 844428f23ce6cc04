package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spektr-org/socialavg/schema"
)

// ============================================================================
// CSV HELPER — Parses CSV data into typed Rows
// ============================================================================
// Parsing is strict: a header missing a schema column, a malformed row or a
// measure that does not coerce fails the whole parse. Nothing is dropped.
// ============================================================================

var (
	// ErrNotInteger marks an integer measure whose value does not parse.
	ErrNotInteger = errors.New("not an integer")
	// ErrNotNumber marks a measure whose value does not parse as a number.
	ErrNotNumber = errors.New("not a number")
)

// ParseError locates a value that failed coercion.
type ParseError struct {
	Line   int // 1-based line in the input, header is line 1
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %s: %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Row is one parsed data line, keyed by schema column name.
type Row struct {
	Line       int
	Dimensions map[string]string  // missing markers ("NA", "null", ...) become ""
	Integers   map[string]int64   // measures with MeasureMeta.Integer set
	Numbers    map[string]float64 // all other measures
}

// missingMarkers are the cell values a data-frame CSV reader treats as NaN.
var missingMarkers = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// ParseCSV reads a header row and all data rows from r. Columns outside the
// schema are ignored.
func ParseCSV(r io.Reader, sch schema.Config) ([]Row, error) {
	reader := csv.NewReader(r)

	// Read header
	headers, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read CSV header: %w", schema.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	cols, err := sch.Resolve(headers)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row := Row{
			Line:       line,
			Dimensions: make(map[string]string, len(sch.Dimensions)),
			Integers:   make(map[string]int64),
			Numbers:    make(map[string]float64),
		}
		for _, d := range sch.Dimensions {
			val := record[cols[d.Key]]
			if missingMarkers[val] {
				val = ""
			}
			row.Dimensions[d.Key] = val
		}
		for _, m := range sch.Measures {
			raw := record[cols[m.Key]]
			if err := row.setMeasure(m, raw); err != nil {
				return nil, &ParseError{Line: line, Column: m.Key, Value: raw, Err: err}
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// setMeasure coerces a cell. Integer measures accept only base-10 integers
// ("10", " 10 ", "-3"); "10.0", "" and "abc" are rejected.
func (r *Row) setMeasure(m schema.MeasureMeta, raw string) error {
	val := strings.TrimSpace(raw)
	if m.Integer {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return ErrNotInteger
		}
		r.Integers[m.Key] = n
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return ErrNotNumber
	}
	r.Numbers[m.Key] = f
	return nil
}
