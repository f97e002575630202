// Package config loads surrogate experiments from YAML files.
//
// Every field has a default, so a file only lists what it changes:
//
//	surrogate:
//	  latent_size: 4
//	  ffnn:
//	    epochs: 500
//	evaluation:
//	  trials: 10
//	  output_prefix: results/cae_ffnn.txt
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/surrogate/internal/evaluate"
	"github.com/born-ml/surrogate/internal/split"
	"github.com/born-ml/surrogate/internal/surrogate"
)

// Split orders.
const (
	OrderContiguous  = "contiguous"
	OrderInterleaved = "interleaved"
)

// SplitConfig configures the splitter of every trial.
type SplitConfig struct {
	TestFraction       float64 `yaml:"test_fraction"`
	ValidationFraction float64 `yaml:"validation_fraction"`
	Order              string  `yaml:"order"`

	// Seed of the first trial's interleaved order; trial i uses Seed+i.
	Seed int64 `yaml:"seed"`
}

// EvaluationConfig configures repeated trials and where their errors go.
type EvaluationConfig struct {
	Trials  int `yaml:"trials"`
	Workers int `yaml:"workers"`

	// OutputPrefix names the text error logs, one file per error name.
	OutputPrefix string `yaml:"output_prefix"`

	// SQLitePath stores errors in a database instead of text files when set.
	SQLitePath string `yaml:"sqlite_path"`
}

// LogConfig configures progress logging.
type LogConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Config is a complete experiment.
type Config struct {
	Surrogate  surrogate.Config `yaml:"surrogate"`
	Split      SplitConfig      `yaml:"split"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Log        LogConfig        `yaml:"log"`
}

// Default returns the reference experiment: the default CAE-FFNN evaluated over
// ten interleaved 80/20 splits.
func Default() Config {
	return Config{
		Surrogate: surrogate.DefaultConfig(),
		Split: SplitConfig{
			TestFraction: 0.2,
			Order:        OrderInterleaved,
			Seed:         1,
		},
		Evaluation: EvaluationConfig{
			Trials:       10,
			Workers:      1,
			OutputPrefix: "errors.txt",
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: config path comes from the command line
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if err := c.Surrogate.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Split.Order != OrderContiguous && c.Split.Order != OrderInterleaved {
		errs = append(errs, fmt.Errorf("split order must be %q or %q, got %q", OrderContiguous, OrderInterleaved, c.Split.Order))
	}
	if _, err := split.New(split.Config{MinTestFraction: c.Split.TestFraction, MinValidationFraction: c.Split.ValidationFraction}); err != nil {
		errs = append(errs, err)
	}
	if c.Evaluation.Trials <= 0 {
		errs = append(errs, fmt.Errorf("evaluation trials must be positive, got %d", c.Evaluation.Trials))
	}
	if c.Evaluation.OutputPrefix == "" && c.Evaluation.SQLitePath == "" {
		errs = append(errs, errors.New("evaluation needs an output prefix or a sqlite path"))
	}
	return errors.Join(errs...)
}

// Splitter builds the splitter of a trial.
func (c Config) Splitter(trial int) (*split.Splitter, error) {
	order := split.Contiguous()
	if c.Split.Order == OrderInterleaved {
		order = split.Interleaved(c.Split.Seed + int64(trial))
	}
	return split.New(split.Config{
		MinTestFraction:       c.Split.TestFraction,
		MinValidationFraction: c.Split.ValidationFraction,
		Order:                 order,
	})
}

// Logger returns the progress logger, or nil when logging is off.
func (c Config) Logger() *log.Logger {
	if !c.Log.Verbose {
		return nil
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

// ErrorLog opens the configured error log. The returned function releases it.
func (c Config) ErrorLog() (evaluate.ErrorLog, func() error, error) {
	if c.Evaluation.SQLitePath != "" {
		l, err := evaluate.OpenSQLiteLog(c.Evaluation.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	}
	return evaluate.NewFileLog(c.Evaluation.OutputPrefix), func() error { return nil }, nil
}

// Evaluator wires a CAE-FFNN evaluator: every trial trains a fresh surrogate
// built from the surrogate section and splits with the split section. The
// returned function releases the error log.
func (c Config) Evaluator() (*evaluate.Evaluator, func() error, error) {
	errLog, closeLog, err := c.ErrorLog()
	if err != nil {
		return nil, nil, err
	}
	logger := c.Logger()
	sc := c.Surrogate
	sc.Logger = logger
	return &evaluate.Evaluator{
		NewSurrogate: func(int) (surrogate.Model, error) { return surrogate.NewCAEFFNN(sc) },
		Trials:       c.Evaluation.Trials,
		Log:          errLog,
		NewSplitter:  c.Splitter,
		Workers:      c.Evaluation.Workers,
		Logger:       logger,
	}, closeLog, nil
}
