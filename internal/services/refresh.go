package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/audit"
	"github.com/footyedge/reconciler/internal/ingest"
	"github.com/footyedge/reconciler/internal/models"
	"github.com/footyedge/reconciler/internal/reconcile"
	"github.com/footyedge/reconciler/internal/store"
)

// Sources describes where a refresh pass finds its inputs. Remote URLs
// are downloaded into Dir before the local scan.
type Sources struct {
	Dir        string   // scanned for *.xlsx price workbooks and *.csv correction sheets
	RemoteURLs []string // optional sheets to download into Dir first
}

// RefreshService orchestrates a full reconciliation pass: fetch and
// ingest sources, match and correct, sweep, snapshot and save, record
// the audit trail, invalidate caches. One pass is a complete,
// idempotent-intended batch; the store lock keeps passes serialized.
type RefreshService struct {
	store   *store.Store
	auditDB *audit.Store
	cache   *CacheService
	fetcher *ingest.Fetcher
	sources Sources
	logger  *logrus.Logger
}

// NewRefreshService wires a refresh service. auditDB and cache may be
// nil-capable as documented on their types; fetcher may be nil when no
// remote sources are configured.
func NewRefreshService(st *store.Store, auditDB *audit.Store, cache *CacheService, fetcher *ingest.Fetcher, sources Sources, logger *logrus.Logger) *RefreshService {
	return &RefreshService{
		store:   st,
		auditDB: auditDB,
		cache:   cache,
		fetcher: fetcher,
		sources: sources,
		logger:  logger,
	}
}

// Run executes one full pass. trigger labels the audit record
// ("scheduled", "manual", "api"). A source that cannot be read at all
// aborts the pass before the canonical file is touched; row-level and
// unmatched problems skip and continue.
func (s *RefreshService) Run(ctx context.Context, trigger string) (*audit.Run, error) {
	started := time.Now().UTC()
	runID := uuid.NewString()
	log := s.logger.WithFields(logrus.Fields{"run": runID, "trigger": trigger})
	log.Info("starting reconciliation run")

	var failedSources []string
	if s.fetcher != nil && len(s.sources.RemoteURLs) > 0 {
		res := s.fetcher.FetchAll(ctx, s.sources.RemoteURLs, s.sources.Dir)
		failedSources = append(failedSources, res.Failed...)
	}

	workbooks, sheets, err := s.scanSources()
	if err != nil {
		return nil, err
	}

	// All sources are parsed before the store is locked or written, so
	// a broken input can never leave a half-updated canonical file.
	var incoming []models.PlayerRecord
	for _, wb := range workbooks {
		records, err := ingest.LoadPriceWorkbook(wb, s.logger)
		if err != nil {
			return nil, fmt.Errorf("price workbook: %w", err)
		}
		incoming = append(incoming, records...)
	}
	var corrections []reconcile.Correction
	for _, sheet := range sheets {
		cs, err := ingest.LoadCorrectionSheet(sheet, s.logger)
		if err != nil {
			return nil, fmt.Errorf("correction sheet: %w", err)
		}
		corrections = append(corrections, cs...)
	}

	var overrides []reconcile.Override
	if s.auditDB != nil {
		overrides, err = s.auditDB.ActiveOverrides()
		if err != nil {
			return nil, fmt.Errorf("override table: %w", err)
		}
	}

	if err := s.store.Lock(); err != nil {
		return nil, err
	}
	defer s.store.Unlock()

	records, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	records = mergeIncoming(records, incoming, s.logger)

	result := reconcile.Run(records, corrections, overrides, s.logger)

	if _, err := s.store.Snapshot(); err != nil {
		return nil, err
	}
	if err := s.store.Save(result.Records); err != nil {
		return nil, err
	}

	run := audit.Run{
		ID:            runID,
		StartedAt:     started,
		FinishedAt:    time.Now().UTC(),
		Trigger:       trigger,
		Applied:       result.Applied,
		Skipped:       result.Skipped,
		Unmatched:     result.Unmatched,
		Removed:       len(result.Removals),
		RecordCount:   len(result.Records),
		FailedSources: strings.Join(failedSources, ","),
	}
	if s.auditDB != nil {
		if err := s.auditDB.RecordRun(run, result.Outcomes, result.Removals); err != nil {
			// The canonical file is already saved; a failed audit write
			// should not fail the pass.
			log.WithError(err).Error("failed to record audit trail")
		}
	}

	if err := s.cache.Delete(ctx, CacheKeyPlayers, CacheKeyLastRun); err != nil {
		log.WithError(err).Warn("failed to invalidate cache")
	}

	log.WithFields(logrus.Fields{
		"applied":   run.Applied,
		"unmatched": run.Unmatched,
		"removed":   run.Removed,
		"records":   run.RecordCount,
	}).Info("reconciliation run finished")
	return &run, nil
}

// scanSources lists the price workbooks and correction sheets under
// the sources directory, sorted for deterministic application order.
func (s *RefreshService) scanSources() (workbooks, sheets []string, err error) {
	if s.sources.Dir == "" {
		return nil, nil, nil
	}
	entries, err := os.ReadDir(s.sources.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("dir", s.sources.Dir).Warn("sources directory missing, running sweep-only pass")
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to scan sources: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(s.sources.Dir, e.Name())
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xlsx":
			workbooks = append(workbooks, path)
		case ".csv":
			sheets = append(sheets, path)
		}
	}
	sort.Strings(workbooks)
	sort.Strings(sheets)
	return workbooks, sheets, nil
}

// mergeIncoming folds freshly ingested workbook records into the
// canonical set. Rows matching an existing record update its price,
// breakeven, average and position in place; unmatched rows are
// appended as new records. Existing score history is preserved.
func mergeIncoming(records, incoming []models.PlayerRecord, logger *logrus.Logger) []models.PlayerRecord {
	if len(incoming) == 0 {
		return records
	}
	matcher := reconcile.NewMatcher(records)
	added := 0
	for _, in := range incoming {
		idx, _, ok := matcher.Match(in.Name)
		if !ok {
			records = append(records, in)
			added++
			continue
		}
		rec := &records[idx]
		rec.Price = in.Price
		rec.BreakEven = in.BreakEven
		rec.AveragePoints = in.AveragePoints
		if in.Position != "" {
			rec.Position = in.Position
		}
	}
	logger.WithFields(logrus.Fields{
		"incoming": len(incoming),
		"added":    added,
	}).Info("workbook records merged")
	return records
}
