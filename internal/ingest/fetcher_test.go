package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDownloadsFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Player,Club\nSam Walsh,Carlton\n"))
	}))
	defer srv.Close()

	f := NewFetcher(100, quietLogger())
	dest := filepath.Join(t.TempDir(), "teams.csv")
	require.NoError(t, f.Fetch(context.Background(), srv.URL+"/teams.csv", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Sam Walsh")
}

func TestFetchAllCollectsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad.csv" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(100, quietLogger())
	res := f.FetchAll(context.Background(), []string{
		srv.URL + "/good.csv",
		srv.URL + "/bad.csv",
	}, t.TempDir())

	assert.Len(t, res.Fetched, 1)
	require.Len(t, res.Failed, 1)
	assert.Contains(t, res.Failed[0], "/bad.csv")
}

func TestFetchRespectsCancelledContext(t *testing.T) {
	f := NewFetcher(0.001, quietLogger()) // effectively never refills

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := f.Fetch(ctx, "http://localhost/never", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}
