package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aluiziolira/go-cricket-live/models"
)

// DualWriter records every snapshot twice: the full snapshot as a JSON line
// and its flattened scorecard rows in a CSV file beside it.
type DualWriter struct {
	mu       sync.Mutex
	rows     *CSVWriter
	lines    *JSONWriter
	csvPath  string
	jsonPath string
	written  int
}

// DualPaths derives the CSV and JSONL paths from a single output name by
// swapping its extension, so "out/scores.csv" and "out/scores" both give
// "out/scores.csv" and "out/scores.jsonl".
func DualPaths(output string) (csvPath, jsonPath string) {
	base := strings.TrimSuffix(output, filepath.Ext(output))
	return base + ".csv", base + ".jsonl"
}

// NewDualWriter opens both files derived from output.
func NewDualWriter(output string) (*DualWriter, error) {
	csvPath, jsonPath := DualPaths(output)

	rows, err := NewCSVWriter(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot rows: %w", err)
	}
	lines, err := NewJSONWriter(jsonPath)
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("open snapshot lines: %w", err)
	}

	return &DualWriter{
		rows:     rows,
		lines:    lines,
		csvPath:  csvPath,
		jsonPath: jsonPath,
	}, nil
}

// Paths returns the CSV and JSONL files being written.
func (dw *DualWriter) Paths() (csvPath, jsonPath string) {
	return dw.csvPath, dw.jsonPath
}

// Written is the number of snapshots that reached both files.
func (dw *DualWriter) Written() int {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.written
}

// Write appends the batch to the JSONL file first, since it carries the
// complete snapshot, and then to the CSV file.
func (dw *DualWriter) Write(snapshots []*models.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	dw.mu.Lock()
	defer dw.mu.Unlock()

	if err := dw.lines.Write(snapshots); err != nil {
		return fmt.Errorf("%s: %w", dw.jsonPath, err)
	}
	if err := dw.rows.Write(snapshots); err != nil {
		return fmt.Errorf("%s: %d snapshots only in %s: %w", dw.csvPath, len(snapshots), dw.jsonPath, err)
	}
	dw.written += len(snapshots)
	return nil
}

// Close closes both files and reports every failure.
func (dw *DualWriter) Close() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	return errors.Join(
		wrapPath(dw.csvPath, dw.rows.Close()),
		wrapPath(dw.jsonPath, dw.lines.Close()),
	)
}

// Validate checks both files.
func (dw *DualWriter) Validate() error {
	return errors.Join(
		wrapPath(dw.csvPath, dw.rows.Validate()),
		wrapPath(dw.jsonPath, dw.lines.Validate()),
	)
}

func wrapPath(path string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", path, err)
}
