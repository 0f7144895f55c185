package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTeam(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"Full name", "Adelaide", "Adelaide"},
		{"Abbreviation", "ADE", "Adelaide"},
		{"Lowercase abbreviation", "wbd", "Western Bulldogs"},
		{"Nickname", "Magpies", "Collingwood"},
		{"Old full form", "Brisbane Lions", "Brisbane"},
		{"GWS long form", "Greater Western Sydney", "GWS"},
		{"Empty", "", "Unknown"},
		{"Garbage", "Fitzroy United", "Unknown"},
		{"Unknown passthrough", "unknown", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveTeam(tt.raw))
		})
	}
}

func TestTeamRegistry(t *testing.T) {
	names := TeamNames()
	require.Len(t, names, 18)
	for _, n := range names {
		assert.True(t, KnownTeam(n))
		assert.NotEmpty(t, TeamAbbreviation(n))
	}
	assert.False(t, KnownTeam("Unknown"))
	assert.Empty(t, TeamAbbreviation("Fitzroy"))
}

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"DEF", "DEF"},
		{"Midfielder", "MID"},
		{"def/mid", "DEF/MID"},
		{"FWD, RUC", "FWD/RUC"},
		{"Forward", "FWD"},
		{"Ruck", "RUC"},
		{"", ""},
		{"WING", "WING"}, // unknown tokens stay visible
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePosition(tt.raw))
		})
	}
}

func TestNewPlayerRecordDerivedFields(t *testing.T) {
	rec := NewPlayerRecord("Jordan Dawson", "ADE", "DEF/MID", 850000, 110, 100, []float64{80, 90, 100, 110})

	assert.Equal(t, "Adelaide", rec.Team)
	assert.InDelta(t, 100.0, rec.L3Average, 0.001, "last three scores average")
	assert.InDelta(t, 100.0, rec.ProjectedScore, 0.001)
	assert.InDelta(t, 8500.0, rec.PricePerPoint, 0.001)
	assert.Equal(t, CategoryPremium, rec.Category)
	assert.NotEmpty(t, rec.ID)
}

func TestNewPlayerRecordWithoutHistory(t *testing.T) {
	rec := NewPlayerRecord("Rookie Rook", "", "MID", 198000, -20, 45, nil)

	assert.Equal(t, TeamUnknown, rec.Team)
	assert.Zero(t, rec.L3Average)
	assert.InDelta(t, 45.0, rec.ProjectedScore, 0.001, "projection falls back to season average")
	assert.Equal(t, CategoryRookie, rec.Category)
}

func TestValidate(t *testing.T) {
	valid := NewPlayerRecord("Sam Walsh", "Carlton", "MID", 780000, 95, 99.1, nil)
	assert.NoError(t, valid.Validate())

	nameless := valid
	nameless.Name = "  "
	assert.Error(t, nameless.Validate())

	negative := valid
	negative.Price = -1
	assert.Error(t, negative.Validate())
}
