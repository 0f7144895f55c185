package reconcile

import (
	"github.com/footyedge/reconciler/internal/models"
	"github.com/footyedge/reconciler/internal/normalize"
)

// lowerPriceWins lists players for whom the LOWER-priced duplicate is
// authoritative. Jhye Clark's inflated listing is a known source bug;
// the 449k entry is the real one. This is a documented exception, not
// a fallback rule.
var lowerPriceWins = map[string]bool{
	"jhye clark": true,
}

// denyList names known-fictitious records (test data that leaked into
// published sheets). Matching records are dropped outright.
var denyList = map[string]bool{
	"test player":   true,
	"sample player": true,
	"a player":      true,
}

// Removal describes a record dropped by a sweep, for the audit trail.
type Removal struct {
	RecordID string
	Name     string
	Reason   string
}

// Dedupe sweeps records sharing an identical normalized name, keeping
// the strictly higher-priced one, except for names in lowerPriceWins
// where the cheaper record is authoritative. Relative order of the
// survivors is preserved.
func Dedupe(records []models.PlayerRecord) ([]models.PlayerRecord, []Removal) {
	keep := make(map[string]int, len(records)) // normalized name -> index into records
	removedIdx := make(map[int]bool)
	var removals []Removal

	for i, rec := range records {
		key := normalize.Key(rec.Name)
		prev, seen := keep[key]
		if !seen {
			keep[key] = i
			continue
		}

		winner, loser := prev, i
		preferLower := lowerPriceWins[key]
		prevWins := records[prev].Price > rec.Price
		if preferLower {
			prevWins = records[prev].Price < rec.Price
		}
		if !prevWins {
			winner, loser = i, prev
		}
		keep[key] = winner
		removedIdx[loser] = true
		removals = append(removals, Removal{
			RecordID: records[loser].ID,
			Name:     records[loser].Name,
			Reason:   "duplicate of " + records[winner].Name,
		})
	}

	if len(removals) == 0 {
		return records, nil
	}

	// Survivors are filtered by index, not ID, so records that share an
	// ID value (or lack one entirely) can never take bystanders with
	// them.
	out := records[:0:0]
	for i, rec := range records {
		if !removedIdx[i] {
			out = append(out, rec)
		}
	}
	return out, removals
}

// SweepDenied drops records whose normalized name is on the fixed
// fictitious-entry deny-list.
func SweepDenied(records []models.PlayerRecord) ([]models.PlayerRecord, []Removal) {
	var removals []Removal
	out := records[:0:0]
	for _, rec := range records {
		if denyList[normalize.Key(rec.Name)] {
			removals = append(removals, Removal{
				RecordID: rec.ID,
				Name:     rec.Name,
				Reason:   "fictitious entry",
			})
			continue
		}
		out = append(out, rec)
	}
	return out, removals
}
