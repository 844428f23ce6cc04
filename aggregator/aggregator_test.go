package aggregator

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spektr-org/socialavg/helpers"
	"github.com/spektr-org/socialavg/schema"
)

// ============================================================================
// FIXTURES
// ============================================================================

const exampleCSV = `Platform,PostType,Date,Likes
Twitter,Image,2023-01-01,10
Twitter,Image,2023-01-02,20
`

const mixedCSV = `Platform,PostType,Date,Likes,AgeGroup,Comments
Instagram,Video,3/2/2024,100,18-24,4
Facebook,Link,3/1/2024,3,25-34,0
Instagram,Image,3/1/2024,50,18-24,1
Facebook,Link,3/2/2024,4,35-44,2
Instagram,Video,3/1/2024,101,25-34,9
Facebook,Link,3/1/2024,4,18-24,1
Twitter,Text,3/3/2024,7,45-54,0
`

func writeInput(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "socialMedia.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return dir, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func testOptions(dir, input string) Options {
	return Options{
		Input:       input,
		AvgOutput:   filepath.Join(dir, DefaultAvgOutput),
		TimeOutput:  filepath.Join(dir, DefaultTimeOutput),
		PreviewRows: DefaultPreview,
	}
}

// ============================================================================
// OPERATIONS
// ============================================================================

func TestLoad(t *testing.T) {
	_, path := writeInput(t, mixedCSV)
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 7 {
		t.Fatalf("expected 7 rows, got %d", table.Len())
	}
	want := SourceRecord{Platform: "Facebook", PostType: "Link", Date: "3/1/2024", Likes: 3}
	if got := table.Record(1); got != want {
		t.Fatalf("Record(1) = %+v, want %+v", got, want)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected fs.ErrNotExist, got %v", err)
		}
	})
	t.Run("missing column", func(t *testing.T) {
		_, path := writeInput(t, "Platform,PostType,Likes\nX,Y,1\n")
		if _, err := Load(path); !errors.Is(err, schema.ErrMissingColumn) {
			t.Fatalf("expected ErrMissingColumn, got %v", err)
		}
	})
	t.Run("non-integer likes", func(t *testing.T) {
		_, path := writeInput(t, exampleCSV+"Twitter,Image,2023-01-03,abc\n")
		if _, err := Load(path); !errors.Is(err, helpers.ErrNotInteger) {
			t.Fatalf("expected ErrNotInteger, got %v", err)
		}
	})
}

func TestAggregateByPlatformPostType(t *testing.T) {
	_, path := writeInput(t, mixedCSV)
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, err := AggregateByPlatformPostType(table)
	if err != nil {
		t.Fatalf("AggregateByPlatformPostType failed: %v", err)
	}
	want := PlatformPostTypeTable{
		{Platform: "Facebook", PostType: "Link", AvgLikes: 3.67},
		{Platform: "Instagram", PostType: "Image", AvgLikes: 50},
		{Platform: "Instagram", PostType: "Video", AvgLikes: 100.5},
		{Platform: "Twitter", PostType: "Text", AvgLikes: 7},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Platform != w.Platform || g.PostType != w.PostType || g.AvgLikes != w.AvgLikes {
			t.Errorf("row %d = %+v, want %+v", i, g, w)
		}
	}
}

func TestAggregateByDate(t *testing.T) {
	_, path := writeInput(t, mixedCSV)
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, err := AggregateByDate(table)
	if err != nil {
		t.Fatalf("AggregateByDate failed: %v", err)
	}
	// 3/1: (3+50+101+4)/4 = 39.5; 3/2: (100+4)/2 = 52; 3/3: 7
	want := DateTable{
		{Date: "3/1/2024", AvgLikes: 39.5},
		{Date: "3/2/2024", AvgLikes: 52},
		{Date: "3/3/2024", AvgLikes: 7},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Date != w.Date || got[i].AvgLikes != w.AvgLikes {
			t.Errorf("row %d = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestAggregateLargeLikesStayExact(t *testing.T) {
	// 2^53+1 and 2^53+2 both round to 2^53 as float64
	table := mustLoad(t, `Platform,PostType,Date,Likes
Twitter,Image,2023-01-01,9007199254740993
Twitter,Image,2023-01-01,9007199254740994
Facebook,Link,2023-01-02,9007199254740993
`)
	if got := table.Record(0).Likes; got != 9007199254740993 {
		t.Fatalf("Likes = %d, want 9007199254740993", got)
	}

	pp, err := AggregateByPlatformPostType(table)
	if err != nil {
		t.Fatalf("AggregateByPlatformPostType failed: %v", err)
	}
	want := [][]string{
		{"Facebook", "Link", "9007199254740993.00"},
		{"Twitter", "Image", "9007199254740993.50"},
	}
	if got := pp.Records(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("records = %v, want %v", got, want)
	}

	dates, err := AggregateByDate(table)
	if err != nil {
		t.Fatalf("AggregateByDate failed: %v", err)
	}
	if got := dates.Records(); got[0][1] != "9007199254740993.50" || got[1][1] != "9007199254740993.00" {
		t.Fatalf("records = %v", got)
	}
}

func TestAggregateSkipsMissingKeys(t *testing.T) {
	table := mustLoad(t, `Platform,PostType,Date,Likes
Twitter,Image,2023-01-01,10
,Image,2023-01-01,5
Twitter,NA,2023-01-02,7
Twitter,Image,,20
`)

	pp, err := AggregateByPlatformPostType(table)
	if err != nil {
		t.Fatalf("AggregateByPlatformPostType failed: %v", err)
	}
	if len(pp) != 1 || pp[0].Platform != "Twitter" || pp[0].PostType != "Image" || pp[0].AvgLikes != 15 {
		t.Fatalf("unexpected summary: %+v", pp)
	}

	dates, err := AggregateByDate(table)
	if err != nil {
		t.Fatalf("AggregateByDate failed: %v", err)
	}
	// 2023-01-01: (10+5)/2; 2023-01-02: 7
	if len(dates) != 2 || dates[0].AvgLikes != 7.5 || dates[1].Date != "2023-01-02" {
		t.Fatalf("unexpected summary: %+v", dates)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "avg.csv")
	if err := Write(pp, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := readFile(t, path); strings.Contains(got, ",Image,5.00") || strings.Contains(got, "\n,") {
		t.Fatalf("empty key written: %q", got)
	}
}

func TestAggregatesAreUniqueAndComplete(t *testing.T) {
	var b strings.Builder
	b.WriteString("Platform,PostType,Date,Likes\n")
	platforms := []string{"Twitter", "Facebook", "Instagram", "LinkedIn"}
	types := []string{"Image", "Video", "Text"}
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "%s,%s,3/%d/2024,%d\n", platforms[i%4], types[i%3], i%7+1, i*13%997)
	}
	table := mustLoad(t, b.String())

	pp, err := AggregateByPlatformPostType(table)
	if err != nil {
		t.Fatalf("AggregateByPlatformPostType failed: %v", err)
	}
	seen := make(map[[2]string]bool)
	for _, r := range pp {
		k := [2]string{r.Platform, r.PostType}
		if seen[k] {
			t.Fatalf("duplicate pair %v", k)
		}
		seen[k] = true
	}
	if len(seen) != 12 {
		t.Fatalf("expected 12 pairs, got %d", len(seen))
	}

	dates, err := AggregateByDate(table)
	if err != nil {
		t.Fatalf("AggregateByDate failed: %v", err)
	}
	if len(dates) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(dates))
	}
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Date >= dates[i].Date {
			t.Fatalf("dates out of order at %d: %s >= %s", i, dates[i-1].Date, dates[i].Date)
		}
	}
}

func TestAggregateEmptyTable(t *testing.T) {
	table := NewSourceTable(nil)
	pp, err := AggregateByPlatformPostType(table)
	if err != nil || len(pp) != 0 {
		t.Fatalf("expected empty summary, got %v, %v", pp, err)
	}
	dates, err := AggregateByDate(table)
	if err != nil || len(dates) != 0 {
		t.Fatalf("expected empty summary, got %v, %v", dates, err)
	}
}

func mustLoad(t *testing.T, content string) *SourceTable {
	t.Helper()
	_, path := writeInput(t, content)
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return table
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	summary := PlatformPostTypeTable{
		{Platform: "Twitter", PostType: "Image, carousel", AvgLikes: 15},
		{Platform: "Facebook", PostType: "Link", AvgLikes: 3.67},
	}
	if err := Write(summary, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "Platform,PostType,AvgLikes\nTwitter,\"Image, carousel\",15.00\nFacebook,Link,3.67\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("file mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestWriteUnwritablePath(t *testing.T) {
	err := Write(DateTable{}, filepath.Join(t.TempDir(), "no-such-dir", "out.csv"))
	if err == nil {
		t.Fatal("expected an error for an unwritable path")
	}
}

// ============================================================================
// RUN
// ============================================================================

func TestRunExample(t *testing.T) {
	dir, input := writeInput(t, exampleCSV)
	var stdout bytes.Buffer

	rep, err := NewRunner(testOptions(dir, input), &stdout, nil).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.RunID == "" || rep.Records != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}

	if got, want := readFile(t, filepath.Join(dir, DefaultAvgOutput)), "Platform,PostType,AvgLikes\nTwitter,Image,15.00\n"; got != want {
		t.Errorf("avg file = %q, want %q", got, want)
	}
	if got, want := readFile(t, filepath.Join(dir, DefaultTimeOutput)), "Date,AvgLikes\n2023-01-01,10.00\n2023-01-02,20.00\n"; got != want {
		t.Errorf("time file = %q, want %q", got, want)
	}

	out := stdout.String()
	for _, s := range []string{"Platform", "15.00", "2023-01-02", "20.00"} {
		if !strings.Contains(out, s) {
			t.Errorf("preview missing %q:\n%s", s, out)
		}
	}
}

func TestRunPreviewIsLimited(t *testing.T) {
	var b strings.Builder
	b.WriteString("Platform,PostType,Date,Likes\n")
	for i := 0; i < 9; i++ {
		fmt.Fprintf(&b, "P%d,Image,2024-01-0%d,%d\n", i, i+1, i)
	}
	dir, input := writeInput(t, b.String())
	var stdout bytes.Buffer

	if _, err := NewRunner(testOptions(dir, input), &stdout, nil).Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// two headers + 5 rows each
	if lines := strings.Count(stdout.String(), "\n"); lines != 12 {
		t.Fatalf("expected 12 preview lines, got %d:\n%s", lines, stdout.String())
	}
	if strings.Contains(stdout.String(), "P5") {
		t.Fatal("preview should stop after 5 rows")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir, input := writeInput(t, mixedCSV)
	opts := testOptions(dir, input)

	var first [2]string
	for i := 0; i < 2; i++ {
		if _, err := NewRunner(opts, &bytes.Buffer{}, nil).Run(); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		avg, tm := readFile(t, opts.AvgOutput), readFile(t, opts.TimeOutput)
		if i == 0 {
			first = [2]string{avg, tm}
			continue
		}
		if avg != first[0] || tm != first[1] {
			t.Fatal("second run produced different output")
		}
	}
}

func TestRunBadLikesWritesNothing(t *testing.T) {
	dir, input := writeInput(t, exampleCSV+"Twitter,Video,2023-01-03,abc\n")
	opts := testOptions(dir, input)

	_, err := NewRunner(opts, &bytes.Buffer{}, nil).Run()
	if !errors.Is(err, helpers.ErrNotInteger) {
		t.Fatalf("expected ErrNotInteger, got %v", err)
	}
	for _, p := range []string{opts.AvgOutput, opts.TimeOutput} {
		if _, err := os.Stat(p); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("%s should not exist, stat err = %v", p, err)
		}
	}
}

func TestRunStageTwoFailureKeepsStageOne(t *testing.T) {
	dir, input := writeInput(t, exampleCSV)
	opts := testOptions(dir, input)
	opts.TimeOutput = filepath.Join(dir, "no-such-dir", DefaultTimeOutput)

	rep, err := NewRunner(opts, &bytes.Buffer{}, nil).Run()
	if err == nil {
		t.Fatal("expected stage two to fail")
	}
	if rep == nil || len(rep.ByPlatformPostType) != 1 {
		t.Fatalf("report should carry stage one: %+v", rep)
	}
	if got := readFile(t, opts.AvgOutput); !strings.Contains(got, "Twitter,Image,15.00") {
		t.Fatalf("stage one output missing: %q", got)
	}
}
