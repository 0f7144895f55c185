package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/models"
)

// Correction is a single source-derived field change targeting a player
// by display name.
type Correction struct {
	Name   string
	Field  string
	Value  string
	Source string // originating sheet, for the audit trail
}

// Fields a correction may target.
const (
	FieldTeam      = "team"
	FieldPosition  = "position"
	FieldPrice     = "price"
	FieldBreakEven = "breakEven"
	FieldName      = "name"
)

// Outcome statuses.
const (
	StatusApplied   = "applied"
	StatusSkipped   = "skipped"
	StatusUnmatched = "unmatched"
)

// Origin of the value actually written.
const (
	OriginAuto     = "auto"
	OriginOverride = "override"
)

// Outcome records what happened to one correction, in the shape the
// audit trail persists.
type Outcome struct {
	RecordID   string
	TargetName string
	Field      string
	OldValue   string
	NewValue   string
	Method     MatchMethod
	Origin     string
	Status     string
	Reason     string
}

// Override is a manual, versioned correction keyed by stable record ID.
// Overrides exist to patch known matcher blind spots and always win
// over source-derived values for the same record and field.
type Override struct {
	RecordID string
	Field    string
	Value    string
	Note     string
}

// Corrector applies corrections to the canonical set through the
// matcher, consulting the override layer before writing.
type Corrector struct {
	records   []models.PlayerRecord
	matcher   *Matcher
	overrides map[string]map[string]Override // record ID -> field -> override
	logger    *logrus.Logger
}

// NewCorrector wires a corrector over the given records. The records
// slice is mutated in place.
func NewCorrector(records []models.PlayerRecord, overrides []Override, logger *logrus.Logger) *Corrector {
	byRecord := make(map[string]map[string]Override)
	for _, o := range overrides {
		if byRecord[o.RecordID] == nil {
			byRecord[o.RecordID] = make(map[string]Override)
		}
		byRecord[o.RecordID][o.Field] = o
	}
	return &Corrector{
		records:   records,
		matcher:   NewMatcher(records),
		overrides: byRecord,
		logger:    logger,
	}
}

// Records returns the (possibly mutated) record slice.
func (c *Corrector) Records() []models.PlayerRecord {
	return c.records
}

// Apply resolves and applies one correction. Unmatched targets are
// reported and skipped, never fatal. If an override exists for the
// matched record and field, the override's value is written instead of
// the source value and the outcome is marked accordingly.
func (c *Corrector) Apply(cor Correction) Outcome {
	idx, method, ok := c.matcher.Match(cor.Name)
	if !ok {
		c.logger.WithFields(logrus.Fields{
			"name":  cor.Name,
			"field": cor.Field,
		}).Warn("correction target not found in canonical set")
		return Outcome{
			TargetName: cor.Name,
			Field:      cor.Field,
			NewValue:   cor.Value,
			Status:     StatusUnmatched,
			Reason:     "no matching canonical record",
		}
	}

	rec := &c.records[idx]
	value := cor.Value
	origin := OriginAuto
	if o, ok := c.overrides[rec.ID][cor.Field]; ok {
		value = o.Value
		origin = OriginOverride
	}

	old, err := c.setField(idx, cor.Field, value)
	if err != nil {
		return Outcome{
			RecordID:   rec.ID,
			TargetName: cor.Name,
			Field:      cor.Field,
			NewValue:   value,
			Method:     method,
			Origin:     origin,
			Status:     StatusSkipped,
			Reason:     err.Error(),
		}
	}

	c.logger.WithFields(logrus.Fields{
		"player": rec.Name,
		"field":  cor.Field,
		"old":    old,
		"new":    value,
		"method": method,
		"origin": origin,
	}).Debug("correction applied")

	return Outcome{
		RecordID:   rec.ID,
		TargetName: cor.Name,
		Field:      cor.Field,
		OldValue:   old,
		NewValue:   value,
		Method:     method,
		Origin:     origin,
		Status:     StatusApplied,
	}
}

// setField writes value into the named field and returns the previous
// value as a string. A name change reindexes the matcher immediately.
func (c *Corrector) setField(idx int, field, value string) (string, error) {
	rec := &c.records[idx]
	switch field {
	case FieldTeam:
		old := rec.Team
		rec.Team = models.ResolveTeam(value)
		return old, nil
	case FieldPosition:
		old := rec.Position
		rec.Position = models.NormalizePosition(value)
		return old, nil
	case FieldPrice:
		old := strconv.Itoa(rec.Price)
		price, err := parseAmount(value)
		if err != nil {
			return old, fmt.Errorf("bad price %q: %w", value, err)
		}
		rec.Price = price
		return old, nil
	case FieldBreakEven:
		old := strconv.Itoa(rec.BreakEven)
		be, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return old, fmt.Errorf("bad breakeven %q: %w", value, err)
		}
		rec.BreakEven = be
		return old, nil
	case FieldName:
		old := rec.Name
		c.matcher.Rename(idx, strings.TrimSpace(value))
		return old, nil
	default:
		return "", fmt.Errorf("unknown correction field %q", field)
	}
}

// parseAmount parses a currency-ish integer, tolerating "$", "," and
// surrounding whitespace as they appear in price sheets.
func parseAmount(raw string) (int, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}
	// Sheets occasionally write prices as "449.0" thousands-truncated
	// floats; accept those too.
	if strings.Contains(cleaned, ".") {
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}
	return strconv.Atoi(cleaned)
}
