package store

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/wordtrainer/internal/model"
	"github.com/verte-zerg/wordtrainer/internal/revision"
)

var csvHeader = []string{"word", "date_to_revise", "delta"}

// CSVStore keeps revision records in a delimited file with one
// word,date_to_revise,delta row per record.
type CSVStore struct {
	path string
}

// NewCSVStore returns a store backed by the file at path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (c *CSVStore) Path() string {
	return c.path
}

// LoadAll reads every record. A missing file holds no records; the header row
// is optional.
func (c *CSVStore) LoadAll(_ context.Context) ([]model.RevisionRecord, int, error) {
	file, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only file.
			_ = cerr
		}
	}()
	return readCSV(file)
}

func readCSV(r io.Reader) ([]model.RevisionRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []model.RevisionRecord
	skipped := 0
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return nil, 0, err
		}
		if first {
			first = false
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), csvHeader[0]) {
				continue
			}
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) != len(csvHeader) {
			skipped++
			continue
		}
		rec, ok := parseRecord(strings.TrimSpace(row[0]), strings.TrimSpace(row[1]), strings.TrimSpace(row[2]))
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// SaveAll overwrites the file with records, writing through a temp file.
func (c *CSVStore) SaveAll(_ context.Context, records []model.RevisionRecord) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create records dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "records-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp records file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	buf := bufio.NewWriter(tmpFile)
	if err := writeCSV(buf, records); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close records file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, records []model.RevisionRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write records header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Word, rec.NextDue.Format(dateLayout), strconv.Itoa(rec.Interval)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %q: %w", rec.Word, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

var _ revision.RecordStore = (*CSVStore)(nil)
