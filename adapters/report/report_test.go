package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocrack/domain/run"
	"gocrack/domain/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummary(t *testing.T) Summary {
	t.Helper()
	ct, err := series.FromRows([][]int32{{1, 2}, {3, 4}})
	require.NoError(t, err)
	rec := run.NewRecord("synthetic", ct, 42, run.Settings{Iterations: 3, Width: 32, MaxBit: 8, BitCycles: 6, T0: 30, K: 10, Restarts: 2})
	rec.FinalEnergy = 12.5

	return Summary{
		Record:    rec,
		Baselines: []Baseline{{"encrypted", 1e17}, {"decrypted", 3400}},
		Restarts:  []float64{12.5, 19},
		Best:      0,
		Trace:     []float64{40, 20, 12.5},
		TraceMean: 24.1667,
		TraceStd:  14.0,
		Accuracy:  &Accuracy{LowBits: 0.95, FullColumns: 0.9, MeanErrors: 0.1},
	}
}

func TestMarkdown(t *testing.T) {
	md := string(Markdown(testSummary(t)))

	assert.Contains(t, md, "# Keystream recovery run ")
	assert.Contains(t, md, "| Iterations | 3 |")
	assert.Contains(t, md, "| Width | 32 |")
	assert.Contains(t, md, "| decrypted | 3400 |")
	assert.Contains(t, md, "| refined | 12.5 |")
	assert.Contains(t, md, "| 0 (best) | 12.5 |")
	assert.Contains(t, md, "40 20 12.5")
	assert.Contains(t, md, "95.0%")
}

func TestMarkdown_SingleSearchHasNoRestartTable(t *testing.T) {
	s := testSummary(t)
	s.Restarts = s.Restarts[:1]
	s.Accuracy = nil

	md := string(Markdown(s))
	assert.NotContains(t, md, "## Restarts")
	assert.NotContains(t, md, "## Key accuracy")
}

func TestHTML(t *testing.T) {
	page := string(HTML(testSummary(t)))
	assert.Contains(t, page, "<html")
	assert.Contains(t, page, "<table")
	assert.Contains(t, page, "<h2")
}

func TestWrite_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	s := testSummary(t)

	mdPath := filepath.Join(dir, "run.md")
	htmlPath := filepath.Join(dir, "run.html")
	require.NoError(t, Write(mdPath, s))
	require.NoError(t, Write(htmlPath, s))

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(md), "# Keystream"))

	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<html")
}
