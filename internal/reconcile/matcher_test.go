package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footyedge/reconciler/internal/models"
)

func testRecords(names ...string) []models.PlayerRecord {
	records := make([]models.PlayerRecord, len(names))
	for i, n := range names {
		records[i] = models.NewPlayerRecord(n, "Unknown", "MID", 300000, 50, 70, nil)
	}
	return records
}

func TestMatcherOrder(t *testing.T) {
	records := testRecords("Jordan Dawson", "Josh Dunkley", "Sam Walsh")
	m := NewMatcher(records)

	tests := []struct {
		name         string
		query        string
		expectedName string
		method       MatchMethod
		shouldMatch  bool
	}{
		{
			name:         "Exact match",
			query:        "Jordan Dawson",
			expectedName: "Jordan Dawson",
			method:       MatchExact,
			shouldMatch:  true,
		},
		{
			name:         "Case-insensitive match",
			query:        "jordan dawson",
			expectedName: "Jordan Dawson",
			method:       MatchFold,
			shouldMatch:  true,
		},
		{
			name:         "Initial with dot",
			query:        "J. Dawson",
			expectedName: "Jordan Dawson",
			method:       MatchInitial,
			shouldMatch:  true,
		},
		{
			name:         "Initial without dot",
			query:        "J Dawson",
			expectedName: "Jordan Dawson",
			method:       MatchInitial,
			shouldMatch:  true,
		},
		{
			name:         "Position tags stripped before matching",
			query:        "Sam Walsh MID,FWD",
			expectedName: "Sam Walsh",
			method:       MatchExact,
			shouldMatch:  true,
		},
		{
			name:        "Wrong initial",
			query:       "T Dawson",
			shouldMatch: false,
		},
		{
			name:        "Unknown player",
			query:       "Gary Ablett",
			shouldMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, method, ok := m.Match(tt.query)
			if !tt.shouldMatch {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.expectedName, records[idx].Name)
			assert.Equal(t, tt.method, method)
		})
	}
}

func TestMatcherPrefersSpelledOutFirstName(t *testing.T) {
	// Both entries share surname and initial; the fully spelled-out
	// first name must win for an initial-form query.
	records := testRecords("J Dawson", "Jordan Dawson")
	m := NewMatcher(records)

	idx, method, ok := m.Match("J. Dawson")
	require.True(t, ok)
	assert.Equal(t, MatchInitial, method)
	assert.Equal(t, "Jordan Dawson", records[idx].Name)
}

func TestMatcherObservesRenames(t *testing.T) {
	records := testRecords("Jordn Dawson", "Sam Walsh")
	m := NewMatcher(records)

	idx, _, ok := m.Match("Jordn Dawson")
	require.True(t, ok)
	m.Rename(idx, "Jordan Dawson")

	// The exact index entry for the old spelling is gone; the old
	// query now only resolves through the initial heuristic.
	_, method, ok := m.Match("Jordn Dawson")
	require.True(t, ok)
	assert.Equal(t, MatchInitial, method)

	idx, method, ok = m.Match("Jordan Dawson")
	require.True(t, ok)
	assert.Equal(t, MatchExact, method)
	assert.Equal(t, "Jordan Dawson", records[idx].Name)
}
