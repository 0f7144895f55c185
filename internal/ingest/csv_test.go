package ingest

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/footyedge/reconciler/internal/reconcile"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeSheet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTeamSheet(t *testing.T) {
	path := writeSheet(t, "Player,Club\nJordan Dawson,Adelaide\nSam Walsh,Carlton\n")

	corrections, err := LoadTeamSheet(path, quietLogger())
	require.NoError(t, err)
	require.Len(t, corrections, 2)
	assert.Equal(t, reconcile.Correction{
		Name: "Jordan Dawson", Field: reconcile.FieldTeam, Value: "Adelaide", Source: path,
	}, corrections[0])
}

func TestLoadTeamSheetHeaderVariants(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Lowercase", "player,club\nSam Walsh,Carlton\n"},
		{"Name and Team", "Name,Team\nSam Walsh,Carlton\n"},
		{"Extra columns", "Round,Player,Points,Club\n3,Sam Walsh,104,Carlton\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSheet(t, tt.content)
			corrections, err := LoadTeamSheet(path, quietLogger())
			require.NoError(t, err)
			require.Len(t, corrections, 1)
			assert.Equal(t, "Sam Walsh", corrections[0].Name)
			assert.Equal(t, "Carlton", corrections[0].Value)
		})
	}
}

func TestLoadTeamSheetSkipsBadRows(t *testing.T) {
	path := writeSheet(t, "Player,Club\nJordan Dawson,Adelaide\n,Geelong\nSam Walsh,\nshort\nNick Daicos,Collingwood\n")

	corrections, err := LoadTeamSheet(path, quietLogger())
	require.NoError(t, err)
	require.Len(t, corrections, 2, "rows without both player and club are skipped")
	assert.Equal(t, "Jordan Dawson", corrections[0].Name)
	assert.Equal(t, "Nick Daicos", corrections[1].Name)
}

func TestLoadTeamSheetMissingFileIsFatal(t *testing.T) {
	_, err := LoadTeamSheet(filepath.Join(t.TempDir(), "nope.csv"), quietLogger())
	assert.Error(t, err)
}

func TestLoadTeamSheetMissingColumns(t *testing.T) {
	path := writeSheet(t, "Foo,Bar\n1,2\n")
	_, err := LoadTeamSheet(path, quietLogger())
	assert.Error(t, err)
}

func TestLoadBreakevenSheet(t *testing.T) {
	path := writeSheet(t, "Player,BE\nJordan Dawson,112\nSam Walsh,88\n")

	corrections, err := LoadBreakevenSheet(path, quietLogger())
	require.NoError(t, err)
	require.Len(t, corrections, 2)
	assert.Equal(t, reconcile.FieldBreakEven, corrections[0].Field)
	assert.Equal(t, "112", corrections[0].Value)
}

func TestLoadCorrectionSheetSniffsKind(t *testing.T) {
	teamPath := writeSheet(t, "Player,Club\nSam Walsh,Carlton\n")
	corrections, err := LoadCorrectionSheet(teamPath, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, reconcile.FieldTeam, corrections[0].Field)

	bePath := writeSheet(t, "Player,BE\nSam Walsh,88\n")
	corrections, err = LoadCorrectionSheet(bePath, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, reconcile.FieldBreakEven, corrections[0].Field)

	otherPath := writeSheet(t, "Foo,Bar\n1,2\n")
	_, err = LoadCorrectionSheet(otherPath, quietLogger())
	assert.Error(t, err)
}
