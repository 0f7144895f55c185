// Package store owns the canonical player JSON file. Every pass reads
// the whole file, mutates in memory and rewrites the whole file; there
// is no partial-update API. The store handle replaces the old habit of
// treating the file path as ambient global state: callers hold a
// *Store and go through its load/save lifecycle, and a lock file
// serializes writers so two processes cannot silently clobber each
// other.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/models"
)

// ErrLocked is returned by Lock when another live writer holds the
// canonical store.
var ErrLocked = errors.New("canonical store is locked by another writer")

// Store is a handle to the canonical record file.
type Store struct {
	path      string
	backupDir string
	logger    *logrus.Logger
	now       func() time.Time
}

// New returns a store for the canonical file at path. Backups are
// written to backupDir, which defaults to the canonical file's
// directory when empty.
func New(path, backupDir string, logger *logrus.Logger) *Store {
	if backupDir == "" {
		backupDir = filepath.Dir(path)
	}
	return &Store{path: path, backupDir: backupDir, logger: logger, now: time.Now}
}

// Path returns the canonical file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the entire canonical set into memory. A missing file is
// not an error: it yields an empty set so a first full-refresh run can
// create the store.
func (s *Store) Load() ([]models.PlayerRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("path", s.path).Warn("canonical store missing, starting empty")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read canonical store: %w", err)
	}

	var records []models.PlayerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse canonical store %s: %w", s.path, err)
	}

	// Store files written before IDs existed carry records without one.
	// Assign IDs here so the override and audit layers can key on them;
	// the next save persists the assignment.
	assigned := 0
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
			assigned++
		}
	}
	if assigned > 0 {
		s.logger.WithField("records", assigned).Info("assigned ids to legacy records")
	}
	return records, nil
}

// Save rewrites the canonical file as indented JSON. The write goes to
// a temp file in the same directory followed by a rename, so a crash
// mid-write never leaves a truncated canonical file behind. Field
// order within records is fixed by the PlayerRecord struct, which
// makes a load-then-save round trip byte-stable.
func (s *Store) Save(records []models.PlayerRecord) error {
	if records == nil {
		records = []models.PlayerRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode canonical store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".canonical-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp store file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace canonical store: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":    s.path,
		"records": len(records),
	}).Info("canonical store saved")
	return nil
}

// lockStaleAfter is how old a leftover lock file must be before a new
// writer may break it. Pipeline passes finish in seconds; anything
// holding the lock for this long is a dead process.
const lockStaleAfter = 10 * time.Minute

// Lock takes the writer lock for the canonical file. It returns an
// error if another live writer holds it.
func (s *Store) Lock() error {
	lockPath := s.path + ".lock"
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
			f.Close()
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}
		info, statErr := os.Stat(lockPath)
		if statErr == nil && time.Since(info.ModTime()) > lockStaleAfter {
			s.logger.WithField("lock", lockPath).Warn("breaking stale store lock")
			os.Remove(lockPath)
			continue
		}
		return fmt.Errorf("%w (%s)", ErrLocked, lockPath)
	}
	return fmt.Errorf("failed to acquire store lock %s", lockPath)
}

// Unlock releases the writer lock.
func (s *Store) Unlock() {
	if err := os.Remove(s.path + ".lock"); err != nil && !os.IsNotExist(err) {
		s.logger.WithError(err).Warn("failed to remove store lock")
	}
}
