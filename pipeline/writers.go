package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/aluiziolira/go-cricket-live/models"
)

// CSVWriter writes records to CSV.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends one row per batting, bowling and yet-to-bat entry of each
// snapshot.
func (cw *CSVWriter) Write(snapshots []*models.Snapshot) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, snapshot := range snapshots {
		for _, record := range snapshotRows(snapshot) {
			if err := cw.writer.Write(record); err != nil {
				return fmt.Errorf("write csv record: %w", err)
			}
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"match_id", "short_name", "innings", "role", "name", "status",
	"runs", "balls", "fours", "sixes", "strike_rate",
	"overs", "maidens", "wickets", "no_balls", "wides", "economy",
	"match_status", "captured_at",
}

const (
	roleBatting  = "batting"
	roleBowling  = "bowling"
	roleYetToBat = "yet_to_bat"
)

func snapshotRows(snapshot *models.Snapshot) [][]string {
	capturedAt := snapshot.CapturedAt.UTC().Format(time.RFC3339)
	row := func(innings int, role string, cells ...string) []string {
		out := make([]string, 0, len(csvHeader))
		out = append(out, snapshot.MatchID, snapshot.ShortName, strconv.Itoa(innings), role)
		out = append(out, cells...)
		return append(out, snapshot.Status, capturedAt)
	}

	var rows [][]string
	for i, innings := range snapshot.Innings {
		number := innings.Number
		if number == 0 {
			number = i + 1
		}
		for _, b := range innings.BatsmanDetails {
			rows = append(rows, row(number, roleBatting,
				b.Name, b.Status, b.Runs, b.Balls, b.Fours, b.Sixes, b.StrikeRate,
				"", "", "", "", "", ""))
		}
		for _, b := range innings.BowlerDetails {
			rows = append(rows, row(number, roleBowling,
				b.Name, "", b.Runs, "", "", "", "",
				b.Overs, b.Maidens, b.Wickets, b.NoBalls, b.Wides, b.Economy))
		}
		if innings.YetToBat != "" {
			rows = append(rows, row(number, roleYetToBat,
				innings.YetToBat, "", "", "", "", "", "",
				"", "", "", "", "", ""))
		}
	}
	return rows
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content besides the header.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends snapshots in JSONL format.
func (jw *JSONWriter) Write(snapshots []*models.Snapshot) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, snapshot := range snapshots {
		if err := jw.encoder.Encode(snapshot); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}

	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
