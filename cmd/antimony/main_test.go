package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"antimony"
	"antimony/internal/crawler"
	"antimony/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModel(t *testing.T, path, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func plainSession() *antimony.Session { return antimony.NewSession() }

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		opts    convertOptions
		want    string
		wantErr bool
	}{
		{"next to source", "models/a.txt", convertOptions{Format: antimony.FormatSBML}, "models/a.xml", false},
		{"out dir", "models/a.txt", convertOptions{Format: antimony.FormatCellML, OutDir: "out"}, "out/a.cellml", false},
		{"module suffix", "a.txt", convertOptions{Format: antimony.FormatAntimony, Module: "M", OutDir: "out"}, "out/a.M.txt", false},
		{"same file", "models/a.xml", convertOptions{Format: antimony.FormatSBML}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPath(tt.src, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, filepath.Join(dir, "a.txt"), "S1 -> S2; k")
	writeModel(t, filepath.Join(dir, "nested", "b.xml"), "<sbml/>")
	writeModel(t, filepath.Join(dir, "notes.md"), "# not a model")

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "nested", "b.xml")}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestConvertAll(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		p := filepath.Join(dir, name)
		writeModel(t, p, "S1 -> S2; k1*S1\nk1 = 0.1\n")
		files = append(files, p)
	}
	out := filepath.Join(dir, "out")
	opts := convertOptions{Format: antimony.FormatSBML, OutDir: out}

	results, err := convertAll(context.Background(), files, opts, 2, plainSession)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, files[i], r.Source)
		data, err := os.ReadFile(r.Output)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<sbml")
	}

	idx, err := antimony.NewSession().LoadSBMLFile(results[0].Output)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestConvertAll_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.txt")
	writeModel(t, bad, "model M()\n S1 -> S2; k")

	_, err := convertAll(context.Background(), []string{bad}, convertOptions{Format: antimony.FormatSBML}, 1, plainSession)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.txt")
	assert.ErrorIs(t, err, antimony.ErrLoad)
}

func TestWatchLoop(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := filepath.Join(dir, "bad.txt")
	writeModel(t, good, "S1 -> S2; k1*S1\n")
	writeModel(t, bad, "S1 -> S2 @ k")

	events := make(chan crawler.WatchEvent, 3)
	events <- crawler.WatchEvent{Path: good, Operation: crawler.OpModify}
	events <- crawler.WatchEvent{Path: bad, Operation: crawler.OpCreate}
	events <- crawler.WatchEvent{Path: bad, Operation: crawler.OpDelete}
	close(events)

	reg := metrics.NewRegistry()
	opts := convertOptions{Format: antimony.FormatCellML, OutDir: filepath.Join(dir, "out")}
	watchLoop(context.Background(), events, opts, reg, plainSession)

	assert.FileExists(t, filepath.Join(dir, "out", "good.cellml"))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Reconversions.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Reconversions.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.FilesWatched))
}
