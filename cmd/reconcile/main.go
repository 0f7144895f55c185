// Command reconcile runs a single offline reconciliation pass and
// exits. A source that cannot be read exits non-zero without touching
// the canonical file.
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/audit"
	"github.com/footyedge/reconciler/internal/ingest"
	"github.com/footyedge/reconciler/internal/services"
	"github.com/footyedge/reconciler/internal/store"
	"github.com/footyedge/reconciler/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logger := logrus.StandardLogger()

	st := store.New(cfg.StorePath, cfg.BackupDir, logger)
	auditDB, err := audit.Open(cfg.AuditDBPath, logger)
	if err != nil {
		logrus.Fatalf("Failed to open audit database: %v", err)
	}
	defer auditDB.Close()

	var fetcher *ingest.Fetcher
	if len(cfg.SourceURLs) > 0 {
		fetcher = ingest.NewFetcher(cfg.FetchRate, logger)
	}
	sources := services.Sources{Dir: cfg.SourcesDir, RemoteURLs: cfg.SourceURLs}
	refresh := services.NewRefreshService(st, auditDB, nil, fetcher, sources, logger)

	run, err := refresh.Run(context.Background(), "manual")
	if err != nil {
		logger.WithError(err).Error("reconciliation run failed")
		os.Exit(1)
	}

	if err := st.PruneBackups(); err != nil {
		logger.WithError(err).Warn("backup pruning failed")
	}

	logger.WithFields(logrus.Fields{
		"run":       run.ID,
		"applied":   run.Applied,
		"skipped":   run.Skipped,
		"unmatched": run.Unmatched,
		"removed":   run.Removed,
		"records":   run.RecordCount,
	}).Info("reconciliation complete")
}
