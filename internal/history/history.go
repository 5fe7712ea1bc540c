// Package history persists the log of completed conversions as a JSON
// array, newest first, capped at a configured number of entries. The file
// is an external contract read by other tooling, so the schema and key
// names are fixed.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"avconverter/internal/fileutil"
)

// DefaultLimit bounds the history when no limit is configured.
const DefaultLimit = 20

// Record is one completed conversion.
type Record struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	OutputURL string    `json:"outputURL"`
	Date      time.Time `json:"date"`
}

// Store reads and writes the history file. Appends are serialized in
// process and written through an atomic rename so concurrent writers never
// corrupt the array.
type Store struct {
	path  string
	limit int

	mu sync.Mutex
}

// NewStore creates a store over the given file path. A non-positive limit
// falls back to DefaultLimit.
func NewStore(path string, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{path: path, limit: limit}
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// List returns the persisted records, newest first. A missing file is an
// empty history, not an error.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Append adds a record at the head of the history and trims to the limit.
// A blank ID or zero date is filled in at append time.
func (s *Store) Append(record Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	records = append([]Record{record}, records...)
	if len(records) > s.limit {
		records = records[:s.limit]
	}
	return s.save(records)
}

// Clear empties the history while keeping the file valid JSON.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]Record{})
}

func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return records, nil
}

func (s *Store) save(records []Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
