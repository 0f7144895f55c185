// Package ingest loads heterogeneous source sheets (CSV team mappings,
// Excel price workbooks, breakeven sheets) into corrections and
// records for the reconciliation pipeline. Row-level problems skip the
// row and continue; only a completely unreadable source is fatal.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/reconcile"
)

// header variants seen across source sheets, lowercased.
var (
	playerHeaders = map[string]bool{"player": true, "name": true, "player name": true}
	clubHeaders   = map[string]bool{"club": true, "team": true}
	beHeaders     = map[string]bool{"be": true, "breakeven": true, "break even": true}
)

// LoadTeamSheet reads a Player/Club CSV and returns one team correction
// per usable row. A missing or unreadable file is fatal to the run; a
// malformed row is skipped with a logged reason.
func LoadTeamSheet(path string, logger *logrus.Logger) ([]reconcile.Correction, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	playerCol, clubCol, err := locateColumns(rows, playerHeaders, clubHeaders)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var corrections []reconcile.Correction
	for i, row := range rows[1:] {
		name, club, ok := pick2(row, playerCol, clubCol)
		if !ok || name == "" || club == "" {
			logger.WithFields(logrus.Fields{"source": path, "row": i + 2}).
				Debug("skipping row without player and club")
			continue
		}
		corrections = append(corrections, reconcile.Correction{
			Name:   name,
			Field:  reconcile.FieldTeam,
			Value:  club,
			Source: path,
		})
	}
	return corrections, nil
}

// LoadBreakevenSheet reads a Player/BE CSV and returns breakeven
// corrections.
func LoadBreakevenSheet(path string, logger *logrus.Logger) ([]reconcile.Correction, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	playerCol, beCol, err := locateColumns(rows, playerHeaders, beHeaders)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var corrections []reconcile.Correction
	for i, row := range rows[1:] {
		name, be, ok := pick2(row, playerCol, beCol)
		if !ok || name == "" || be == "" {
			logger.WithFields(logrus.Fields{"source": path, "row": i + 2}).
				Debug("skipping row without player and breakeven")
			continue
		}
		corrections = append(corrections, reconcile.Correction{
			Name:   name,
			Field:  reconcile.FieldBreakEven,
			Value:  be,
			Source: path,
		})
	}
	return corrections, nil
}

// LoadCorrectionSheet sniffs a CSV's header row and dispatches to the
// matching loader: a Club/Team column makes it a team sheet, a BE
// column a breakeven sheet. Sheets with neither are an error.
func LoadCorrectionSheet(path string, logger *logrus.Logger) ([]reconcile.Correction, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	for _, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if clubHeaders[key] {
			return LoadTeamSheet(path, logger)
		}
		if beHeaders[key] {
			return LoadBreakevenSheet(path, logger)
		}
	}
	return nil, fmt.Errorf("source %s has neither a club nor a breakeven column", path)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-row

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("source %s has no data rows", path)
	}
	return rows, nil
}

// locateColumns finds the indices of the two wanted columns in the
// header row, matching against the known header variants.
func locateColumns(rows [][]string, first, second map[string]bool) (int, int, error) {
	firstCol, secondCol := -1, -1
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if firstCol < 0 && first[key] {
			firstCol = i
		} else if secondCol < 0 && second[key] {
			secondCol = i
		}
	}
	if firstCol < 0 || secondCol < 0 {
		return 0, 0, fmt.Errorf("required columns not found in header %v", rows[0])
	}
	return firstCol, secondCol, nil
}

func pick2(row []string, a, b int) (string, string, bool) {
	if a >= len(row) || b >= len(row) {
		return "", "", false
	}
	return strings.TrimSpace(row[a]), strings.TrimSpace(row[b]), true
}
