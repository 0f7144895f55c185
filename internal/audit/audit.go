// Package audit persists the reconciliation history: every applied,
// skipped and unmatched correction, every dedupe/deny-list removal,
// and the manual override table. Overrides are versioned rows keyed by
// the stable record ID, kept separate from the automatic matcher so
// manual fixes can be inspected instead of hiding inside the matching
// heuristic.
package audit

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/footyedge/reconciler/internal/reconcile"
)

// Run is one pipeline pass.
type Run struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Trigger       string    `json:"trigger"` // "scheduled", "manual", "api"
	Applied       int       `json:"applied"`
	Skipped       int       `json:"skipped"`
	Unmatched     int       `json:"unmatched"`
	Removed       int       `json:"removed"`
	RecordCount   int       `json:"record_count"`
	FailedSources string    `json:"failed_sources,omitempty"`
}

// CorrectionLog is the persisted form of a reconcile.Outcome.
type CorrectionLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RunID      string    `gorm:"index" json:"run_id"`
	RecordID   string    `gorm:"index" json:"record_id"`
	TargetName string    `json:"target_name"`
	Field      string    `json:"field"`
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	Method     string    `json:"method"`
	Origin     string    `json:"origin"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RemovalLog records a dedupe or deny-list drop.
type RemovalLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RunID     string    `gorm:"index" json:"run_id"`
	RecordID  string    `json:"record_id"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// OverrideRow is one version of a manual correction. The newest row per
// (record_id, field) is the active override; older rows are history.
type OverrideRow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecordID  string    `gorm:"index" json:"record_id"`
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store wraps the sqlite audit database.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// Open opens (creating if needed) the audit database at path.
func Open(path string, logger *logrus.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.AutoMigrate(&Run{}, &CorrectionLog{}, &RemovalLog{}, &OverrideRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit database: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordRun persists a completed pass and its detail rows.
func (s *Store) RecordRun(run Run, outcomes []reconcile.Outcome, removals []reconcile.Removal) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		for _, o := range outcomes {
			log := CorrectionLog{
				RunID:      run.ID,
				RecordID:   o.RecordID,
				TargetName: o.TargetName,
				Field:      o.Field,
				OldValue:   o.OldValue,
				NewValue:   o.NewValue,
				Method:     string(o.Method),
				Origin:     o.Origin,
				Status:     o.Status,
				Reason:     o.Reason,
			}
			if err := tx.Create(&log).Error; err != nil {
				return fmt.Errorf("failed to record correction log: %w", err)
			}
		}
		for _, r := range removals {
			log := RemovalLog{
				RunID:    run.ID,
				RecordID: r.RecordID,
				Name:     r.Name,
				Reason:   r.Reason,
			}
			if err := tx.Create(&log).Error; err != nil {
				return fmt.Errorf("failed to record removal log: %w", err)
			}
		}
		return nil
	})
}

// GetRun returns a run with its correction and removal detail.
func (s *Store) GetRun(id string) (*Run, []CorrectionLog, []RemovalLog, error) {
	var run Run
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, nil, nil, err
	}
	var corrections []CorrectionLog
	if err := s.db.Where("run_id = ?", id).Order("id").Find(&corrections).Error; err != nil {
		return nil, nil, nil, err
	}
	var removals []RemovalLog
	if err := s.db.Where("run_id = ?", id).Order("id").Find(&removals).Error; err != nil {
		return nil, nil, nil, err
	}
	return &run, corrections, removals, nil
}

// LastRun returns the most recently finished run, or nil when no run
// has been recorded yet.
func (s *Store) LastRun() (*Run, error) {
	var run Run
	err := s.db.Order("finished_at desc").First(&run).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// AddOverride appends a new version of a manual override.
func (s *Store) AddOverride(recordID, field, value, note string) (*OverrideRow, error) {
	row := OverrideRow{RecordID: recordID, Field: field, Value: value, Note: note}
	if err := s.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to add override: %w", err)
	}
	return &row, nil
}

// ActiveOverrides returns the newest override per (record, field) in
// the shape the corrector consumes.
func (s *Store) ActiveOverrides() ([]reconcile.Override, error) {
	var rows []OverrideRow
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	type key struct{ record, field string }
	latest := make(map[key]OverrideRow)
	var order []key
	for _, row := range rows {
		k := key{row.RecordID, row.Field}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = row
	}

	overrides := make([]reconcile.Override, 0, len(latest))
	for _, k := range order {
		row := latest[k]
		overrides = append(overrides, reconcile.Override{
			RecordID: row.RecordID,
			Field:    row.Field,
			Value:    row.Value,
			Note:     row.Note,
		})
	}
	return overrides, nil
}

// ListOverrides returns the full versioned override history.
func (s *Store) ListOverrides() ([]OverrideRow, error) {
	var rows []OverrideRow
	if err := s.db.Order("id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
