package evaluate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrorLog is an append-only store of scalar errors, one sequence per error name.
type ErrorLog interface {
	// WriteHeader marks the start of a run in the sequence of name.
	WriteHeader(name, text string) error

	// Append adds one value to the sequence of name.
	Append(name string, value float64) error

	// Values returns every value appended to name, oldest first.
	Values(name string) ([]float64, error)
}

// FileLog keeps one text file per error name, one number per line. Header lines
// are plain text and are skipped on read.
//
// Each write opens, appends to and closes the file, so no handle outlives a call.
type FileLog struct {
	prefix string
}

var _ ErrorLog = (*FileLog)(nil)

// NewFileLog returns a log whose files are named after prefix. The error name is
// inserted before the extension: "out/errors.txt" stores "CAE error" in
// "out/errors_CAE error.txt". A prefix without an extension gets ".txt".
func NewFileLog(prefix string) *FileLog {
	return &FileLog{prefix: prefix}
}

// Path returns the file holding the values of name.
func (l *FileLog) Path(name string) string {
	ext := filepath.Ext(l.prefix)
	base := strings.TrimSuffix(l.prefix, ext)
	if ext == "" {
		ext = ".txt"
	}
	return base + "_" + name + ext
}

// WriteHeader implements ErrorLog. The header follows an empty line.
func (l *FileLog) WriteHeader(name, text string) error {
	return l.appendLine(name, "\n"+text)
}

// Append implements ErrorLog.
func (l *FileLog) Append(name string, value float64) error {
	return l.appendLine(name, strconv.FormatFloat(value, 'g', -1, 64))
}

// Values implements ErrorLog.
func (l *FileLog) Values(name string) ([]float64, error) {
	return ReadValues(l.Path(name))
}

func (l *FileLog) appendLine(name, line string) (err error) {
	path := l.Path(name)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // G304: path built from caller prefix
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close error log: %w", cerr)
		}
	}()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}

// ReadValues parses every numeric line of a text error log. Lines that are not
// numbers are headers or separators and are skipped.
func ReadValues(path string) ([]float64, error) {
	f, err := os.Open(path) //nolint:gosec // G304: reading a user-chosen log is the purpose
	if err != nil {
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}
	defer f.Close()

	var values []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}
