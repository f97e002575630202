// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package surrogate provides data-driven surrogate models of parametric
// simulations: a convolutional autoencoder compresses solution vectors into a
// latent space and a feed forward network maps simulation parameters onto it.
//
// # Overview
//
// This package contains:
//   - Models: CAEFFNN and its single stages FFNN, Encoder, Decoder, CAE
//   - Data plumbing: Splitter, Normalize, error metrics
//   - Evaluation: Evaluator with file or SQLite error logs and summaries
//   - Configuration: YAML files through LoadConfig
//
// # Basic Usage
//
//	import "github.com/born-ml/surrogate/surrogate"
//
//	func main() {
//	    m, _ := surrogate.NewCAEFFNN(surrogate.DefaultConfig())
//	    errs, err := m.TrainAndEvaluate(ctx, params, solutions, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(errs[surrogate.SurrogateError])
//
//	    solution, _ := m.Predict([]float64{0.3, 1.2})
//	}
//
// # Evaluation
//
// An Evaluator retrains a design on several splits and appends every error to a
// log, one file per error name:
//
//	ev := &surrogate.Evaluator{
//	    NewSurrogate: func(int) (surrogate.Model, error) { return surrogate.NewCAEFFNN(cfg) },
//	    Trials:       10,
//	    Workers:      4,
//	    Log:          surrogate.NewFileLog("results/cae_ffnn.txt"),
//	}
//	_, err := ev.RunExperiments(ctx, params, solutions)
//	summaries, _ := ev.Summaries()
package surrogate
