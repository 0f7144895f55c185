package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/footyedge/reconciler/internal/audit"
	"github.com/footyedge/reconciler/internal/models"
	"github.com/footyedge/reconciler/internal/store"
)

type refreshFixture struct {
	store   *store.Store
	auditDB *audit.Store
	service *RefreshService
	dir     string
}

func newRefreshFixture(t *testing.T) *refreshFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := t.TempDir()
	sourcesDir := filepath.Join(dir, "sources")
	require.NoError(t, os.MkdirAll(sourcesDir, 0o755))

	st := store.New(filepath.Join(dir, "players.json"), filepath.Join(dir, "backups"), logger)
	auditDB, err := audit.Open(filepath.Join(dir, "audit.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { auditDB.Close() })

	svc := NewRefreshService(st, auditDB, nil, nil, Sources{Dir: sourcesDir}, logger)
	return &refreshFixture{store: st, auditDB: auditDB, service: svc, dir: dir}
}

func (f *refreshFixture) writeSource(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "sources", name), []byte(content), 0o644))
}

func (f *refreshFixture) seed(t *testing.T, records []models.PlayerRecord) {
	t.Helper()
	require.NoError(t, f.store.Save(records))
}

func TestRunAppliesTeamCorrections(t *testing.T) {
	f := newRefreshFixture(t)
	f.seed(t, []models.PlayerRecord{
		models.NewPlayerRecord("Jordan Dawson", "Unknown", "DEF", 850000, 110, 105, nil),
		models.NewPlayerRecord("Sam Walsh", "Carlton", "MID", 780000, 95, 99, nil),
	})
	f.writeSource(t, "teams.csv", "Player,Club\nJ Dawson,Adelaide\nGary Ablett,Geelong\n")

	run, err := f.service.Run(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 1, run.Applied)
	assert.Equal(t, 1, run.Unmatched)
	assert.Equal(t, 2, run.RecordCount)

	records, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Adelaide", teamOf(records, "Jordan Dawson"))
}

func TestRunSweepsDuplicatesAndWritesAudit(t *testing.T) {
	f := newRefreshFixture(t)
	f.seed(t, []models.PlayerRecord{
		models.NewPlayerRecord("Jhye Clark", "Geelong", "MID", 500000, 60, 70, nil),
		models.NewPlayerRecord("Jhye Clark", "Geelong", "MID", 449000, 60, 70, nil),
		models.NewPlayerRecord("Test Player", "Unknown", "MID", 1, 0, 0, nil),
	})

	run, err := f.service.Run(context.Background(), "scheduled")
	require.NoError(t, err)

	assert.Equal(t, 2, run.Removed)
	assert.Equal(t, 1, run.RecordCount)

	records, err := f.store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 449000, records[0].Price, "documented exception keeps the cheaper Jhye Clark")

	got, _, removals, err := f.auditDB.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "scheduled", got.Trigger)
	assert.Len(t, removals, 2)
}

func TestRunMergesWorkbookRowsAsCorrectionsAndAdds(t *testing.T) {
	f := newRefreshFixture(t)
	f.seed(t, []models.PlayerRecord{
		models.NewPlayerRecord("Sam Walsh", "Carlton", "MID", 700000, 80, 95, nil),
	})
	writePriceWorkbook(t, filepath.Join(f.dir, "sources", "prices.xlsx"), [][]interface{}{
		{"AFL Fantasy Prices"},
		{"Player", "Position", "Price $", "Avg", "BE"},
		{"Sam Walsh", "MID", "780000", "99.1", "95"},
		{"New Rookie", "DEF", "198000", "45", "-20"},
	})

	run, err := f.service.Run(context.Background(), "manual")
	require.NoError(t, err)
	assert.Equal(t, 2, run.RecordCount)

	records, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, 780000, priceOf(records, "Sam Walsh"), "existing record updated in place")
	assert.Equal(t, 198000, priceOf(records, "New Rookie"), "unmatched row appended")
}

func TestRunAbortsOnBrokenSourceWithoutWriting(t *testing.T) {
	f := newRefreshFixture(t)
	f.seed(t, []models.PlayerRecord{
		models.NewPlayerRecord("Sam Walsh", "Carlton", "MID", 700000, 80, 95, nil),
	})
	before, err := os.ReadFile(f.store.Path())
	require.NoError(t, err)

	f.writeSource(t, "bad.csv", "Foo,Bar\n1,2\n")

	_, err = f.service.Run(context.Background(), "manual")
	require.Error(t, err)

	after, readErr := os.ReadFile(f.store.Path())
	require.NoError(t, readErr)
	assert.Equal(t, before, after, "canonical file untouched after a fatal source error")
}

func TestRunOverridesBeatSourceValues(t *testing.T) {
	f := newRefreshFixture(t)
	rec := models.NewPlayerRecord("Toby Greene", "Unknown", "FWD", 800000, 100, 95, nil)
	f.seed(t, []models.PlayerRecord{rec})
	_, err := f.auditDB.AddOverride(rec.ID, "team", "GWS", "sheet keeps getting this wrong")
	require.NoError(t, err)
	f.writeSource(t, "teams.csv", "Player,Club\nToby Greene,Richmond\n")

	run, err := f.service.Run(context.Background(), "manual")
	require.NoError(t, err)
	assert.Equal(t, 1, run.Applied)

	records, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "GWS", teamOf(records, "Toby Greene"))

	_, corrections, _, err := f.auditDB.GetRun(run.ID)
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, "override", corrections[0].Origin)
}

func TestRunWritesBackupBeforeSave(t *testing.T) {
	f := newRefreshFixture(t)
	f.seed(t, []models.PlayerRecord{
		models.NewPlayerRecord("Sam Walsh", "Carlton", "MID", 700000, 80, 95, nil),
	})

	_, err := f.service.Run(context.Background(), "manual")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(f.dir, "backups"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^backup_\d{8}_\d{6}\.json$`, entries[0].Name())
}

func writePriceWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cellRef, &row))
	}
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())
}

func teamOf(records []models.PlayerRecord, name string) string {
	for _, r := range records {
		if r.Name == name {
			return r.Team
		}
	}
	return ""
}

func priceOf(records []models.PlayerRecord, name string) int {
	for _, r := range records {
		if r.Name == name {
			return r.Price
		}
	}
	return -1
}
