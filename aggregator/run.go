package aggregator

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/spektr-org/socialavg/engine"
	"github.com/spektr-org/socialavg/internal/logger"
	"github.com/spektr-org/socialavg/schema"
)

// Default file names, relative to the working directory.
const (
	DefaultInput      = "socialMedia.csv"
	DefaultAvgOutput  = "socialMediaAvg.csv"
	DefaultTimeOutput = "socialMediaTime.csv"
	DefaultPreview    = 5
)

// Options selects the files a Runner reads and writes.
type Options struct {
	Input       string
	AvgOutput   string
	TimeOutput  string
	PreviewRows int
}

// DefaultOptions reproduces the fixed file names of the original script.
func DefaultOptions() Options {
	return Options{
		Input:       DefaultInput,
		AvgOutput:   DefaultAvgOutput,
		TimeOutput:  DefaultTimeOutput,
		PreviewRows: DefaultPreview,
	}
}

// Report is what one run produced.
type Report struct {
	RunID              string
	Records            int
	ByPlatformPostType PlatformPostTypeTable
	ByDate             DateTable
}

// Runner executes the two-stage transform.
type Runner struct {
	opts   Options
	stdout io.Writer
	log    *logger.Logger
}

// NewRunner returns a Runner printing previews to stdout.
func NewRunner(opts Options, stdout io.Writer, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{opts: opts, stdout: stdout, log: log}
}

// Run loads the input, then for each summary aggregates, prints the head and
// writes the file. Stage one is finished (file on disk) before stage two
// starts, so a stage-two failure leaves the first output in place.
func (r *Runner) Run() (*Report, error) {
	rep := &Report{RunID: uuid.NewString()}
	log := r.log.With("run_id", rep.RunID)

	table, err := Load(r.opts.Input)
	if err != nil {
		return nil, err
	}
	rep.Records = table.Len()
	log.Info("loaded input",
		"path", r.opts.Input,
		"records", table.Len(),
		"platforms", len(engine.UniqueValues(table.view(), schema.ColPlatform)),
	)

	// ── Stage 1: Platform × PostType ─────────────────────────────────────
	rep.ByPlatformPostType, err = aggregateByPlatformPostType(table, log)
	if err != nil {
		return nil, err
	}
	if err := r.emit(rep.ByPlatformPostType, r.opts.AvgOutput, log); err != nil {
		return nil, err
	}

	// ── Stage 2: Date ────────────────────────────────────────────────────
	rep.ByDate, err = aggregateByDate(table, log)
	if err != nil {
		return rep, err
	}
	if err := r.emit(rep.ByDate, r.opts.TimeOutput, log); err != nil {
		return rep, err
	}

	return rep, nil
}

func (r *Runner) emit(t engine.Tabular, path string, log *logger.Logger) error {
	if _, err := fmt.Fprint(r.stdout, engine.RenderHead(t, r.opts.PreviewRows)); err != nil {
		return fmt.Errorf("print preview: %w", err)
	}
	if err := Write(t, path); err != nil {
		return err
	}
	log.Info("wrote summary", "path", path, "rows", len(t.Records()))
	return nil
}
