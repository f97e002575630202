package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/surrogate/internal/tensor"
)

// loadDataset reads the parameter and solution files of one dataset.
func loadDataset(inputPath, outputPath string) (input, output *tensor.Array[float64], err error) {
	if inputPath == "" || outputPath == "" {
		return nil, nil, errors.New("both -input and -output are required")
	}
	if input, err = LoadCSV(inputPath); err != nil {
		return nil, nil, err
	}
	if output, err = LoadCSV(outputPath); err != nil {
		return nil, nil, err
	}
	if err := tensor.CheckSameSamples(input, output); err != nil {
		return nil, nil, fmt.Errorf("%s and %s: %w", inputPath, outputPath, err)
	}
	return input, output, nil
}

// LoadCSV loads a rank-2 dataset from a CSV file, one sample per row.
//
// CSV Format:
//
//	theta1,theta2
//	0.10,2.5
//	0.35,1.0
//
// A first row that does not parse as numbers is treated as a header.
func LoadCSV(filename string) (*tensor.Array[float64], error) {
	file, err := os.Open(filename) //nolint:gosec // G304: dataset path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", filename, err)
	}
	if len(records) > 0 {
		if _, err := parseRecord(records[0]); err != nil {
			records = records[1:]
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file %s has no samples", filename)
	}

	rows := make([][]float64, len(records))
	for i, record := range records {
		if rows[i], err = parseRecord(record); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", filename, i+1, err)
		}
	}
	return tensor.FromRows(rows)
}

func parseRecord(record []string) ([]float64, error) {
	row := make([]float64, len(record))
	for j, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", j+1, err)
		}
		row[j] = v
	}
	return row, nil
}
