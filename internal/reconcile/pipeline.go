package reconcile

import (
	"github.com/sirupsen/logrus"

	"github.com/footyedge/reconciler/internal/models"
)

// Result is the outcome of one reconciliation pass over the canonical
// set: the surviving records plus everything the audit trail needs.
type Result struct {
	Records   []models.PlayerRecord
	Outcomes  []Outcome
	Removals  []Removal
	Applied   int
	Skipped   int
	Unmatched int
}

// Run applies the given corrections to the record set, then sweeps
// duplicates and deny-listed entries. Unmatched or unparseable
// corrections are reported and skipped; nothing short of a broken
// input source aborts a pass.
func Run(records []models.PlayerRecord, corrections []Correction, overrides []Override, logger *logrus.Logger) Result {
	corrector := NewCorrector(records, overrides, logger)

	var res Result
	for _, cor := range corrections {
		outcome := corrector.Apply(cor)
		res.Outcomes = append(res.Outcomes, outcome)
		switch outcome.Status {
		case StatusApplied:
			res.Applied++
		case StatusSkipped:
			res.Skipped++
		case StatusUnmatched:
			res.Unmatched++
		}
	}

	records = corrector.Records()
	records, dupes := Dedupe(records)
	records, denied := SweepDenied(records)
	res.Removals = append(res.Removals, dupes...)
	res.Removals = append(res.Removals, denied...)
	res.Records = records

	logger.WithFields(logrus.Fields{
		"applied":   res.Applied,
		"skipped":   res.Skipped,
		"unmatched": res.Unmatched,
		"removed":   len(res.Removals),
		"records":   len(res.Records),
	}).Info("reconciliation pass complete")

	return res
}
