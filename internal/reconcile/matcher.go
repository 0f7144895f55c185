// Package reconcile implements the player-data reconciliation pipeline:
// matching incoming correction rows against the canonical record set,
// applying corrections and manual overrides, and sweeping duplicates
// and known-fictitious entries.
package reconcile

import (
	"strings"

	"github.com/footyedge/reconciler/internal/models"
	"github.com/footyedge/reconciler/internal/normalize"
)

// MatchMethod identifies which heuristic resolved a name. Recorded in
// the audit trail so override-layer fixes can be traced back to the
// heuristic that needed them.
type MatchMethod string

const (
	MatchExact   MatchMethod = "exact"
	MatchFold    MatchMethod = "fold"
	MatchInitial MatchMethod = "initial"
)

// Matcher resolves a correction-source name to an index in the
// canonical record slice. Matching is token-based only, ordered from
// most to least precise, first hit wins. No edit distance or phonetic
// matching is attempted.
type Matcher struct {
	records []models.PlayerRecord
	exact   map[string]int
	folded  map[string]int
}

// NewMatcher indexes the given records. The slice is held by reference:
// renames must be reported via Rename so later matches in the same run
// observe the updated name.
func NewMatcher(records []models.PlayerRecord) *Matcher {
	m := &Matcher{records: records}
	m.reindex()
	return m
}

func (m *Matcher) reindex() {
	m.exact = make(map[string]int, len(m.records))
	m.folded = make(map[string]int, len(m.records))
	for i, rec := range m.records {
		if _, dup := m.exact[rec.Name]; !dup {
			m.exact[rec.Name] = i
		}
		key := strings.ToLower(rec.Name)
		if _, dup := m.folded[key]; !dup {
			m.folded[key] = i
		}
	}
}

// Match returns the index of the best-matching canonical record for
// name, trying in order: exact, case-insensitive, surname+initial.
// The stripped form of the name (position tags removed) is tried at
// each tier before falling through to the next.
func (m *Matcher) Match(name string) (int, MatchMethod, bool) {
	candidates := []string{name}
	if stripped := normalize.StripPositionTags(name); stripped != name {
		candidates = append(candidates, stripped)
	}

	for _, c := range candidates {
		if idx, ok := m.exact[c]; ok {
			return idx, MatchExact, true
		}
	}
	for _, c := range candidates {
		if idx, ok := m.folded[strings.ToLower(c)]; ok {
			return idx, MatchFold, true
		}
	}
	for _, c := range candidates {
		if idx, ok := m.matchInitial(c); ok {
			return idx, MatchInitial, true
		}
	}
	return 0, "", false
}

// matchInitial applies the surname + first-initial heuristic. When
// several records share the surname and initial, the one whose first
// name is spelled out longest wins, so "Jordan Dawson" beats a raw
// "J Dawson" entry for the incoming name "J. Dawson".
func (m *Matcher) matchInitial(name string) (int, bool) {
	surname := normalize.Surname(name)
	initial := normalize.FirstInitial(name)
	if surname == "" || initial == "" {
		return 0, false
	}

	best := -1
	bestFirstLen := -1
	for i, rec := range m.records {
		if !strings.EqualFold(normalize.Surname(rec.Name), surname) {
			continue
		}
		if normalize.FirstInitial(rec.Name) != initial {
			continue
		}
		firstLen := len(normalize.FirstToken(rec.Name))
		if firstLen > bestFirstLen {
			best, bestFirstLen = i, firstLen
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// Rename updates the index after a record's name field was corrected.
// Subsequent matches in the same run resolve against the new name.
func (m *Matcher) Rename(idx int, newName string) {
	old := m.records[idx].Name
	m.records[idx].Name = newName
	delete(m.exact, old)
	delete(m.folded, strings.ToLower(old))
	if _, dup := m.exact[newName]; !dup {
		m.exact[newName] = idx
	}
	if _, dup := m.folded[strings.ToLower(newName)]; !dup {
		m.folded[strings.ToLower(newName)] = idx
	}
}
