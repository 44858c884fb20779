package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sjogrenm/ZFLStats/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	loaded, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfig(), loaded)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zflstats.toml")

	cfg := config.DefaultConfig()
	cfg.Input.Coach = "sjogren"
	cfg.Input.Workers = 8
	cfg.Output.Format = config.FormatJSON
	cfg.Output.Auto = true
	cfg.Log.Level = "debug"

	require.NoError(t, cfg.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zflstats.toml")
	require.NoError(t, os.WriteFile(path, []byte("[input]\nteam = \"orcs\"\n"), 0o600))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "orcs", loaded.Input.Team)
	require.Equal(t, "*.bbr", loaded.Input.Pattern)
	require.Equal(t, config.FormatCSV, loaded.Output.Format)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zflstats.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nformat = \"xml\"\n"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[input\n"), 0o600))

	_, err = config.Load(path)
	require.Error(t, err)
}
