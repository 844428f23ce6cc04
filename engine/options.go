package engine

import "github.com/spektr-org/socialavg/internal/logger"

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Precision      int            // decimal places for aggregates; negative disables rounding
	DefaultMeasure string         // measure key used when QuerySpec.Measure is empty
	Log            *logger.Logger // never nil after applyOptions
}

// WithPrecision sets the number of decimal places aggregates are rounded to.
func WithPrecision(places int) Option {
	return func(c *config) {
		c.Precision = places
	}
}

// WithDefaultMeasure sets the measure to aggregate when QuerySpec.Measure is empty.
func WithDefaultMeasure(measure string) Option {
	return func(c *config) {
		c.DefaultMeasure = measure
	}
}

// WithLogger routes engine logs to l.
func WithLogger(l *logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Log = l
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Precision: DefaultPrecision,
		Log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
