package loremaker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaker/pkg/utils"
)

const gvizSheet = `/*O_o*/
google.visualization.Query.setResponse({"status":"ok","table":{"cols":[{"id":"A","label":"Character"},{"id":"B","label":"Powers"}],"rows":[{"c":[{"v":"Mystic Man"},{"v":"Spellcraft:9"}]},{"c":[{"v":"Ama Serwaa"},null]}]}});`

const sheetCSV = "Character,Faction,Powers\nMystic Man,Night Council,Spellcraft:9\nAma Serwaa,Night Council,Flight\n"

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := utils.DefaultConfig()
	cfg.SheetsBase = srv.URL
	cfg.SheetID = "sheet-123"
	cfg.SheetName = "Lore"
	f := NewFetcher(cfg, nil)
	f.Now = func() time.Time { return testDay }
	return f
}

func TestSheetNames(t *testing.T) {
	assert.Equal(t, []string{"Lore", "Characters", "Sheet1"}, SheetNames(" Lore "))
	assert.Equal(t, []string{"characters", "Sheet1"}, SheetNames("characters"))
	assert.Equal(t, []string{"Characters", "Sheet1"}, SheetNames(""))
}

func TestFetcherURL(t *testing.T) {
	f := &Fetcher{BaseURL: "https://docs.google.com", SheetID: "abc"}
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/gviz/tq?sheet=Sheet1&tqx=out%3Ajson", f.URL(FormatGviz, "Sheet1"))
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/gviz/tq?sheet=My+Lore&tqx=out%3Acsv", f.URL(FormatCSV, "My Lore"))
}

func TestLoadPrimaryFormat(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spreadsheets/d/sheet-123/gviz/tq", r.URL.Path)
		if r.URL.Query().Get("tqx") == "out:json" && r.URL.Query().Get("sheet") == "Lore" {
			_, _ = w.Write([]byte(gvizSheet))
			return
		}
		http.Error(w, "unexpected", http.StatusTeapot)
	})

	b, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, b.Error)
	assert.Equal(t, "gviz:Lore", b.Source)
	require.Len(t, b.Characters, 2)
	assert.Equal(t, "Mystic Man", b.Characters[0].Name)
	assert.Equal(t, testDay, b.LoadedAt)
}

func TestLoadFallsBackToCSV(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		calls = append(calls, q.Get("tqx")+"/"+q.Get("sheet"))
		mu.Unlock()
		switch {
		case q.Get("tqx") == "out:json" && q.Get("sheet") == "Characters":
			// a header-only sheet parses but yields nobody
			_, _ = w.Write([]byte(`cb({"status":"ok","table":{"cols":[{"id":"A","label":"Character"}],"rows":[]}});`))
		case q.Get("tqx") == "out:csv" && q.Get("sheet") == "Sheet1":
			_, _ = w.Write([]byte(sheetCSV))
		case q.Get("tqx") == "out:csv":
			_, _ = w.Write([]byte("<!DOCTYPE html><html>sign in</html>"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	b, err := f.Load(context.Background())
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"out:json/Lore", "out:json/Characters", "out:json/Sheet1",
		"out:csv/Lore", "out:csv/Characters", "out:csv/Sheet1",
	}, calls)
	assert.Equal(t, "csv:Sheet1", b.Source)
	require.Len(t, b.Characters, 2)
	assert.Equal(t, "ama-serwaa", b.Characters[1].Slug)

	require.NotEmpty(t, b.Error)
	parts := strings.Split(b.Error, "; ")
	require.Len(t, parts, 5)
	assert.Equal(t, `gviz "Lore": status 500`, parts[0])
	assert.Equal(t, `gviz "Characters": no characters found`, parts[1])
	assert.Contains(t, parts[3], "unexpected html response")
}

func TestLoadServesSampleWhenEverythingFails(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	b, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, b.IsSample())
	assert.Equal(t, SampleCharacters(testDay), b.Characters)
	assert.Len(t, strings.Split(b.Error, "; "), 6)
}

func TestLoadPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hits atomic.Int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
	})

	b, err := f.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, b)
	assert.Equal(t, int32(1), hits.Load())
}

func TestLoadRecordsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	f := &Fetcher{BaseURL: srv.URL, SheetID: "x", Sheets: []string{"Characters"}, Now: func() time.Time { return testDay }}
	b, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, b.IsSample())
	assert.Contains(t, b.Error, `gviz "Characters": request:`)
	assert.Contains(t, b.Error, `csv "Characters": request:`)
}
