package engine

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ============================================================================
// TEXT BUILDER — Console preview of a summary table
// ============================================================================

// Tabular is a header plus string rows, ready to print or serialize.
type Tabular interface {
	Header() []string
	Records() [][]string
}

// RenderHead renders the first n rows of t as an aligned text table with a
// leading row index, in the shape a data-frame head() prints:
//
//	  Platform PostType AvgLikes
//	0 Facebook    Image   120.50
//
// Column widths fit the rows actually shown. n <= 0 renders the header only,
// sized to the header names.
func RenderHead(t Tabular, n int) string {
	header := t.Header()
	rows := t.Records()
	if n < 0 {
		n = 0
	}
	if n < len(rows) {
		rows = rows[:n]
	}

	// Column 0 is the index; columns 1..len(header) are the table's.
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, append([]string{""}, header...))
	for i, row := range rows {
		cells = append(cells, append([]string{strconv.Itoa(i)}, row...))
	}

	widths := make([]int, len(header)+1)
	for _, row := range cells {
		for c, cell := range row {
			if c < len(widths) {
				if w := utf8.RuneCountInString(cell); w > widths[c] {
					widths[c] = w
				}
			}
		}
	}

	var b strings.Builder
	for _, row := range cells {
		for c := range widths {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			if c > 0 {
				b.WriteByte(' ')
			}
			if c == 0 {
				b.WriteString(padRight(cell, widths[c]))
			} else {
				b.WriteString(padLeft(cell, widths[c]))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func padLeft(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
