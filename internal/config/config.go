package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/socialavg/aggregator"
)

// Config is the run configuration. Fields absent from a YAML file keep
// their defaults.
type Config struct {
	Input       string  `yaml:"input"`
	Outputs     Outputs `yaml:"outputs"`
	PreviewRows int     `yaml:"preview_rows"`
	LogMode     string  `yaml:"log_mode"`
	Store       Store   `yaml:"store"`
}

type Outputs struct {
	PlatformPostType string `yaml:"platform_post_type"`
	Date             string `yaml:"date"`
}

type Store struct {
	SQLitePath string `yaml:"sqlite_path"` // empty disables the store
}

// Environment overrides, applied after the YAML file.
const (
	EnvInput       = "SOCIALAVG_INPUT"
	EnvAvgOutput   = "SOCIALAVG_AVG_OUTPUT"
	EnvTimeOutput  = "SOCIALAVG_TIME_OUTPUT"
	EnvPreviewRows = "SOCIALAVG_PREVIEW_ROWS"
	EnvLogMode     = "SOCIALAVG_LOG_MODE"
	EnvSQLitePath  = "SOCIALAVG_SQLITE_PATH"
)

// Default takes file names and preview size from aggregator.DefaultOptions.
func Default() Config {
	opts := aggregator.DefaultOptions()
	return Config{
		Input: opts.Input,
		Outputs: Outputs{
			PlatformPostType: opts.AvgOutput,
			Date:             opts.TimeOutput,
		},
		PreviewRows: opts.PreviewRows,
		LogMode:     "dev",
	}
}

// RunOptions is the aggregator view of the configuration.
func (c Config) RunOptions() aggregator.Options {
	return aggregator.Options{
		Input:       c.Input,
		AvgOutput:   c.Outputs.PlatformPostType,
		TimeOutput:  c.Outputs.Date,
		PreviewRows: c.PreviewRows,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decodeYAML(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Input, EnvInput)
	setString(&cfg.Outputs.PlatformPostType, EnvAvgOutput)
	setString(&cfg.Outputs.Date, EnvTimeOutput)
	setString(&cfg.LogMode, EnvLogMode)
	setString(&cfg.Store.SQLitePath, EnvSQLitePath)

	if v := strings.TrimSpace(os.Getenv(EnvPreviewRows)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvPreviewRows, v)
		}
		cfg.PreviewRows = n
	}
	return nil
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

// Validate rejects configurations the aggregator cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Input == "":
		return errors.New("config: input path is empty")
	case c.Outputs.PlatformPostType == "" || c.Outputs.Date == "":
		return errors.New("config: output paths must be set")
	case c.Outputs.PlatformPostType == c.Outputs.Date:
		return errors.New("config: both outputs point at the same file")
	case c.PreviewRows < 0:
		return errors.New("config: preview_rows must be >= 0")
	}
	return nil
}
