// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package surrogate

import (
	"github.com/born-ml/surrogate/internal/config"
	"github.com/born-ml/surrogate/internal/evaluate"
)

// Evaluator runs repeated train-and-evaluate trials of one surrogate design.
type Evaluator = evaluate.Evaluator

// ErrorLog stores error values per error name.
type ErrorLog = evaluate.ErrorLog

// FileLog appends error values to one text file per error name.
type FileLog = evaluate.FileLog

// SQLiteLog stores error values of every run in a SQLite database.
type SQLiteLog = evaluate.SQLiteLog

// Summary describes the values of one error name.
type Summary = evaluate.Summary

// ErrNoValues is returned when summarizing an empty series.
var ErrNoValues = evaluate.ErrNoValues

// NewFileLog returns a log that writes "<prefix>_<name><ext>" files.
func NewFileLog(prefix string) *FileLog {
	return evaluate.NewFileLog(prefix)
}

// OpenSQLiteLog opens or creates the database at path and starts a new run.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	return evaluate.OpenSQLiteLog(path)
}

// Summarize returns count, mean and population standard deviation of values.
func Summarize(values []float64) (Summary, error) {
	return evaluate.Summarize(values)
}

// SummarizeFile summarizes the numeric lines of an error file.
func SummarizeFile(path string) (Summary, error) {
	return evaluate.SummarizeFile(path)
}

// Configuration files

// FileConfig is the YAML configuration of an evaluation run.
type FileConfig = config.Config

// DefaultFileConfig returns the configuration used when a file sets nothing.
func DefaultFileConfig() FileConfig {
	return config.Default()
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (FileConfig, error) {
	return config.Load(path)
}
