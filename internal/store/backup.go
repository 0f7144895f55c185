package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// backupTimeLayout yields names like backup_20250316_093045.json.
const backupTimeLayout = "20060102_150405"

// backupRetention is how many backups survive a prune. Five covers a
// couple of days of scheduled runs plus manual passes.
const backupRetention = 5

// Snapshot copies the current canonical file to a timestamped backup
// before a destructive rewrite. A missing canonical file is fine (a
// first run has nothing to back up).
func (s *Store) Snapshot() (string, error) {
	src, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to open canonical store for backup: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	name := fmt.Sprintf("backup_%s.json", s.now().Format(backupTimeLayout))
	dstPath := filepath.Join(s.backupDir, name)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}

	s.logger.WithField("backup", dstPath).Info("canonical store backed up")
	return dstPath, nil
}

// PruneBackups deletes all but the backupRetention most recent backup
// files, ordered by the timestamp embedded in the name.
func (s *Store) PruneBackups() error {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to list backup directory: %w", err)
	}

	var backups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "backup_") && strings.HasSuffix(name, ".json") {
			backups = append(backups, name)
		}
	}
	if len(backups) <= backupRetention {
		return nil
	}

	// Timestamped names sort lexically in chronological order.
	sort.Strings(backups)
	for _, name := range backups[:len(backups)-backupRetention] {
		path := filepath.Join(s.backupDir, name)
		if err := os.Remove(path); err != nil {
			s.logger.WithError(err).WithField("backup", path).Warn("failed to prune backup")
			continue
		}
		s.logger.WithField("backup", path).Debug("pruned old backup")
	}
	return nil
}
