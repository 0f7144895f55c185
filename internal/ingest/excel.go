package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/footyedge/reconciler/internal/models"
	"github.com/footyedge/reconciler/internal/normalize"
)

// Price workbooks carry a title row above the real header, so the
// header lives on the second row and data starts on the third.
const headerRowOffset = 1

// priceColumns are the headers the workbook loader understands.
// Unlisted columns are ignored.
var priceColumns = map[string]string{
	"player":   "player",
	"position": "position",
	"price $":  "price",
	"price":    "price",
	"avg":      "avg",
	"be":       "be",
	"games":    "games",
	"points":   "points",
	"own (%)":  "own",
	"$ change": "change",
}

// LoadPriceWorkbook reads a full-refresh Excel price sheet into new
// canonical records. Rows missing a player name, and rows whose price
// cannot be parsed, are skipped with a logged reason.
func LoadPriceWorkbook(path string, logger *logrus.Logger) ([]models.PlayerRecord, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) <= headerRowOffset+1 {
		return nil, fmt.Errorf("workbook %s has no data rows", path)
	}

	cols := make(map[string]int)
	for i, h := range rows[headerRowOffset] {
		if key, ok := priceColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, taken := cols[key]; !taken {
				cols[key] = i
			}
		}
	}
	if _, ok := cols["player"]; !ok {
		return nil, fmt.Errorf("workbook %s is missing the Player column", path)
	}

	var records []models.PlayerRecord
	for i, row := range rows[headerRowOffset+1:] {
		rowNum := i + headerRowOffset + 2
		name := normalize.StripPositionTags(cell(row, cols, "player"))
		if name == "" {
			continue
		}

		price, err := parseMoney(cell(row, cols, "price"))
		if err != nil {
			logger.WithFields(logrus.Fields{
				"source": path, "row": rowNum, "player": name,
			}).WithError(err).Warn("skipping row with unparseable price")
			continue
		}
		be := parseIntOr(cell(row, cols, "be"), 0)
		avg := parseFloatOr(cell(row, cols, "avg"), 0)

		rec := models.NewPlayerRecord(name, "", cell(row, cols, "position"), price, be, avg, nil)
		if err := rec.Validate(); err != nil {
			logger.WithFields(logrus.Fields{"source": path, "row": rowNum}).
				WithError(err).Warn("skipping invalid row")
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("workbook %s produced no usable records", path)
	}
	return records, nil
}

func cell(row []string, cols map[string]int, key string) string {
	idx, ok := cols[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseMoney parses a currency cell, tolerating "$", "," and "%".
func parseMoney(raw string) (int, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(raw)
	if cleaned == "" {
		return 0, fmt.Errorf("empty price cell")
	}
	if strings.Contains(cleaned, ".") {
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}
	return strconv.Atoi(cleaned)
}

func parseIntOr(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func parseFloatOr(raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return v
}
