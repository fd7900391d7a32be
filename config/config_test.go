package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[repl]
prompt = "lox> "
history_file = ""
color = false

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lox> ", cfg.REPL.Prompt)
	assert.Equal(t, "", cfg.REPL.HistoryFile)
	assert.False(t, cfg.REPL.Color)
	assert.Equal(t, "json", cfg.Log.Format)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "warn"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Log.Level = "warn"
	assert.Equal(t, want, cfg)
}

func TestLoadDefaultFileMayBeMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "explicit file must exist",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.toml") },
			wantErr: "failed to read config file",
		},
		{
			name:    "malformed toml",
			path:    func(t *testing.T) string { return writeConfig(t, "[repl\nprompt = 1") },
			wantErr: "failed to parse config file",
		},
		{
			name:    "unknown log level",
			path:    func(t *testing.T) string { return writeConfig(t, "[log]\nlevel = \"loud\"\n") },
			wantErr: `invalid log level "loud"`,
		},
		{
			name:    "unknown log format",
			path:    func(t *testing.T) string { return writeConfig(t, "[log]\nformat = \"xml\"\n") },
			wantErr: `invalid log format "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
