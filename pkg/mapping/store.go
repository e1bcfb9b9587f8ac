package mapping

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Codec converts between a record type and its CSV row representation.
// The header is fixed per mapping kind; Decode receives rows whose length
// already matches the header.
type Codec[T Record] interface {
	Header() []string
	Encode(record T) []string
	Decode(row []string) (T, error)
}

// Store persists mapping records as a flat CSV file with a fixed header.
// Files are read and rewritten wholesale; there are no concurrent writers.
type Store[T Record] struct {
	path  string
	codec Codec[T]
}

func NewStore[T Record](path string, codec Codec[T]) *Store[T] {
	return &Store[T]{path: path, codec: codec}
}

// Path returns the mapping file location.
func (s *Store[T]) Path() string {
	return s.path
}

// Load reads all records from the mapping file. A missing file is reported
// with a hint to run the create-map step first.
func (s *Store[T]) Load() ([]T, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("mapping file %s not found, run create-map first", s.path)
		}
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("mapping file %s is empty", s.path)
	}

	header := s.codec.Header()
	if len(rows[0]) != len(header) {
		return nil, fmt.Errorf("mapping file %s has %d columns, expected %d", s.path, len(rows[0]), len(header))
	}

	records := make([]T, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := s.codec.Decode(row)
		if err != nil {
			return nil, fmt.Errorf("mapping file %s row %d: %w", s.path, i+2, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Save rewrites the mapping file wholesale. The write goes through a temp
// file in the same directory and a rename, so an interrupted save never
// leaves a truncated mapping file behind.
func (s *Store[T]) Save(records []T) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp mapping file: %w", err)
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(s.codec.Header())
	for _, record := range records {
		if writeErr != nil {
			break
		}
		writeErr = writer.Write(s.codec.Encode(record))
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write mapping file %s: %w", s.path, writeErr)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace mapping file %s: %w", s.path, err)
	}
	return nil
}
