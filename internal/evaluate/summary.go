package evaluate

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrNoValues is returned when summarizing an empty sequence of errors.
var ErrNoValues = errors.New("no error values")

// Summary describes the spread of an error over repeated trials.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64 // population standard deviation (divides by Count)
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d mean=%g stddev=%g", s.Count, s.Mean, s.StdDev)
}

// Summarize returns the count, mean and population standard deviation of values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoValues
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	return Summary{Count: len(values), Mean: mean, StdDev: std}, nil
}

// SummarizeFile summarizes the numeric lines of a text error log.
func SummarizeFile(path string) (Summary, error) {
	values, err := ReadValues(path)
	if err != nil {
		return Summary{}, err
	}
	s, err := Summarize(values)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
