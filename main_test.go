package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sjogrenm/ZFLStats/internal"
	"github.com/sjogrenm/ZFLStats/internal/config"
	"github.com/stretchr/testify/require"
)

func TestWriteAuto(t *testing.T) {
	dir := t.TempDir()
	stats := &internal.MatchStats{
		ID:   "match",
		Home: &internal.TeamStats{Name: "Gouged Eye Orcs"},
		Away: &internal.TeamStats{Name: "Elfheim Eagles"},
	}

	require.NoError(t, writeAuto(filepath.Join(dir, "match.bbr"), stats, config.FormatJSON))

	written, err := os.ReadFile(filepath.Join(dir, "match.json"))
	require.NoError(t, err)
	require.Contains(t, string(written), `"id": "match"`)

	require.NoError(t, writeAuto(filepath.Join(dir, "match.bbr"), stats, config.FormatCSV))

	written, err = os.ReadFile(filepath.Join(dir, "match.csv"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(written), "Gouged Eye Orcs vs Elfheim Eagles\n"))
}

func TestWriteConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Input.Team = "Orcs"
	cfg.Input.Workers = 8
	cfg.Output.Format = config.FormatJSON

	path := filepath.Join(t.TempDir(), "zflstats.toml")
	require.NoError(t, writeConfig(cfg, path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
