// Package store keeps normalized records in JSON array files with a 7-day retention.
//
// A FileStore is owned by one run at a time: it loads the whole file, mutates in memory and
// writes the whole file back. Concurrent writers are not supported.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/jma-weather-collector/internal/models"
	"github.com/kjstillabower/jma-weather-collector/internal/observability"
)

// Retention is how long entries are kept, measured from the reconciliation time.
const Retention = 7 * 24 * time.Hour

// Store categories and their file names under the store directory.
const (
	CategoryObservations = "observations"
	CategoryForecasts    = "forecasts"
)

// Path returns the file for category under dir.
func Path(dir, category string) string {
	return filepath.Join(dir, category+".json")
}

// FileStore persists records of one category as a JSON array.
type FileStore[T models.Record] struct {
	path     string
	category string
	logger   *zap.Logger
}

// New returns a FileStore for category under dir.
func New[T models.Record](dir, category string, logger *zap.Logger) *FileStore[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore[T]{
		path:     Path(dir, category),
		category: category,
		logger:   logger.With(zap.String("category", category)),
	}
}

// Path returns the backing file.
func (s *FileStore[T]) Path() string {
	return s.path
}

// Load reads the stored array. A missing file is an empty store.
func (s *FileStore[T]) Load() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read store %s: %w", s.path, err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", s.path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save replaces the file with records. The array is written to a temporary file in the same
// directory and renamed over the target.
func (s *FileStore[T]) Save(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode store %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace store %s: %w", s.path, err)
	}
	return nil
}

// Reconcile merges fresh into the stored array: entries older than now-Retention are
// dropped, an entry with the same date key is replaced in place, anything else is appended.
// An empty fresh slice leaves the file untouched.
func (s *FileStore[T]) Reconcile(fresh []T, now time.Time) error {
	if len(fresh) == 0 {
		return nil
	}

	records, err := s.Load()
	if err != nil {
		return err
	}

	records, pruned := s.prune(records, now)
	records, replaced := merge(records, fresh)

	if err := s.Save(records); err != nil {
		return err
	}

	observability.StoreEntries.WithLabelValues(s.category).Set(float64(len(records)))
	observability.StorePrunedTotal.WithLabelValues(s.category).Add(float64(pruned))
	s.logger.Info("store reconciled",
		zap.Int("entries", len(records)),
		zap.Int("pruned", pruned),
		zap.Int("replaced", replaced),
		zap.Int("appended", len(fresh)-replaced))
	return nil
}

// prune drops entries whose date key is before now-Retention. Entries with an unparseable
// key are kept.
func (s *FileStore[T]) prune(records []T, now time.Time) ([]T, int) {
	cutoff := now.Add(-Retention)
	kept := records[:0]
	for _, r := range records {
		t, err := models.ParseDateKey(r.DateKey())
		if err != nil {
			s.logger.Warn("keeping entry with unparseable date key", zap.String("key", r.DateKey()))
			kept = append(kept, r)
			continue
		}
		if t.Before(cutoff) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}

// merge replaces same-key entries in place and appends the rest, preserving insertion order.
func merge[T models.Record](records, fresh []T) ([]T, int) {
	index := make(map[string]int, len(records))
	for i, r := range records {
		index[r.DateKey()] = i
	}
	replaced := 0
	for _, f := range fresh {
		if i, ok := index[f.DateKey()]; ok {
			records[i] = f
			replaced++
			continue
		}
		index[f.DateKey()] = len(records)
		records = append(records, f)
	}
	return records, replaced
}
