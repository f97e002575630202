// Package evaluate measures how well a surrogate generalizes by retraining it on
// repeated splits of the same data and logging the errors of every trial.
//
//	ev := &evaluate.Evaluator{
//		Surrogate: model,
//		Trials:    10,
//		Log:       evaluate.NewFileLog("results/cae_ffnn.txt"),
//	}
//	if _, err := ev.RunExperiments(ctx, params, solutions); err != nil { ... }
//	s, _ := evaluate.SummarizeFile("results/cae_ffnn_Surrogate error.txt")
//
// Trials run one after another unless Workers > 1 and NewSurrogate builds an
// independent model per trial.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/born-ml/surrogate/internal/logging"
	"github.com/born-ml/surrogate/internal/parallel"
	"github.com/born-ml/surrogate/internal/split"
	"github.com/born-ml/surrogate/internal/surrogate"
	"github.com/born-ml/surrogate/internal/tensor"
)

const evalPrefix = "[EVAL] "

// Evaluator runs repeated train-and-evaluate trials of one surrogate design.
type Evaluator struct {
	// Surrogate is retrained in every trial. Ignored when NewSurrogate is set.
	Surrogate surrogate.Model

	// NewSurrogate builds a fresh model for a trial. Required for parallel trials.
	NewSurrogate func(trial int) (surrogate.Model, error)

	// Trials is the number of experiments to run.
	Trials int

	// Log receives every error value. Nil keeps results in memory only.
	Log ErrorLog

	// NewSplitter builds the splitter of a trial. Nil uses DefaultSplitter.
	NewSplitter func(trial int) (*split.Splitter, error)

	// Workers is the number of trials run concurrently. Values <= 1 run sequentially.
	Workers int

	// Logger receives progress lines prefixed with [EVAL]. Nil discards.
	Logger *log.Logger

	// Now stamps the run header. Nil uses time.Now.
	Now func() time.Time

	names []string
}

// DefaultSplitter holds out 20% of the samples for testing. Each trial draws a
// different interleaved partition, so trials differ by the data they see.
func DefaultSplitter(trial int) (*split.Splitter, error) {
	return split.New(split.Config{
		MinTestFraction: 0.2,
		Order:           split.Interleaved(int64(trial) + 1),
	})
}

// RunExperiments writes a dated header for every error name, then trains and
// evaluates the surrogate Trials times and appends each reported error to the log.
// The returned slice holds the errors of each trial in order.
//
// The first failing trial aborts the run. Errors of the trials before it have
// already been logged.
func (e *Evaluator) RunExperiments(ctx context.Context, input, output *tensor.Array[float64]) ([]map[string]float64, error) {
	if e.Trials <= 0 {
		return nil, fmt.Errorf("evaluate: trials must be positive, got %d", e.Trials)
	}
	if e.Workers > 1 && e.NewSurrogate == nil {
		return nil, errors.New("evaluate: parallel trials need NewSurrogate")
	}
	if e.Surrogate == nil && e.NewSurrogate == nil {
		return nil, errors.New("evaluate: no surrogate")
	}
	if err := tensor.CheckSameSamples(input, output); err != nil {
		return nil, err
	}

	first, err := e.model(0, nil)
	if err != nil {
		return nil, err
	}
	names := first.ErrorNames()
	e.names = names
	if err := e.writeHeaders(names); err != nil {
		return nil, err
	}

	logger := logging.New(e.Logger, evalPrefix)
	logger.Printf("running %d trials of %v on %d samples", e.Trials, names, input.NumSamples())

	results := make([]map[string]float64, e.Trials)
	if e.Workers <= 1 {
		for i := range results {
			if results[i], err = e.trial(ctx, logger, i, first, input, output); err != nil {
				return results[:i], err
			}
			if err := e.record(names, results[i]); err != nil {
				return results[:i+1], err
			}
		}
		return results, nil
	}

	// Trials write to their own slots and the log is appended afterwards in trial
	// order, so the log never sees concurrent writers.
	runErr := parallel.ForErr(ctx, e.Trials, func(ctx context.Context, i int) error {
		r, err := e.trial(ctx, logger, i, first, input, output)
		if err != nil {
			return err
		}
		results[i] = r
		return nil
	}, parallel.Workers(e.Workers))

	done := 0
	for done < len(results) && results[done] != nil {
		if err := e.record(names, results[done]); err != nil {
			return results[:done], err
		}
		done++
	}
	if runErr != nil {
		return results[:done], runErr
	}
	return results, nil
}

// model returns the surrogate of trial i. first is the model already built for
// trial 0, or nil.
func (e *Evaluator) model(i int, first surrogate.Model) (surrogate.Model, error) {
	if e.NewSurrogate == nil {
		return e.Surrogate, nil
	}
	if i == 0 && first != nil {
		return first, nil
	}
	m, err := e.NewSurrogate(i)
	if err != nil {
		return nil, fmt.Errorf("trial %d: %w", i, err)
	}
	return m, nil
}

func (e *Evaluator) trial(ctx context.Context, logger logging.Logger, i int, first surrogate.Model, input, output *tensor.Array[float64]) (map[string]float64, error) {
	model, err := e.model(i, first)
	if err != nil {
		return nil, err
	}
	newSplitter := e.NewSplitter
	if newSplitter == nil {
		newSplitter = DefaultSplitter
	}
	splitter, err := newSplitter(i)
	if err != nil {
		return nil, fmt.Errorf("trial %d: %w", i, err)
	}

	start := time.Now()
	errs, err := model.TrainAndEvaluate(ctx, input, output, splitter)
	if err != nil {
		return nil, fmt.Errorf("trial %d: %w", i, err)
	}
	logger.Printf("trial %d/%d done in %s: %v", i+1, e.Trials, time.Since(start).Round(time.Millisecond), errs)
	return errs, nil
}

// errorNames returns the names of the last run, or asks a model when nothing
// has run yet.
func (e *Evaluator) errorNames() ([]string, error) {
	if e.names != nil {
		return e.names, nil
	}
	m, err := e.model(0, nil)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("evaluate: no surrogate")
	}
	return m.ErrorNames(), nil
}

func (e *Evaluator) writeHeaders(names []string) error {
	if e.Log == nil {
		return nil
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	header := fmt.Sprintf("*** Date: %s ***", now().Format(time.DateTime))
	for _, name := range names {
		if err := e.Log.WriteHeader(name, header); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) record(names []string, errs map[string]float64) error {
	for _, name := range names {
		v, ok := errs[name]
		if !ok {
			return fmt.Errorf("evaluate: surrogate did not report %q", name)
		}
		if e.Log == nil {
			continue
		}
		if err := e.Log.Append(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Summaries summarizes every logged error of the evaluated surrogate.
func (e *Evaluator) Summaries() (map[string]Summary, error) {
	if e.Log == nil {
		return nil, errors.New("evaluate: no error log")
	}
	names, err := e.errorNames()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Summary, len(names))
	for _, name := range names {
		values, err := e.Log.Values(name)
		if err != nil {
			return nil, err
		}
		s, err := Summarize(values)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
}

