package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, ".", cfg.Root)
	require.Equal(t, ColorAuto, cfg.Color)
	require.Equal(t, 20, cfg.MaxErrors)
	require.False(t, cfg.Stats)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yamlContent := "root: ./src\ncolor: always\nmax_errors: 5\nstats: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coralc.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Load(dir, nil)
	require.NoError(t, err)
	require.Equal(t, "./src", cfg.Root)
	require.Equal(t, ColorAlways, cfg.Color)
	require.Equal(t, 5, cfg.MaxErrors)
	require.True(t, cfg.Stats)
}

func TestLoadFindsConfigInParentDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "coralc.yaml"), []byte("max_errors: 7\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(nested, nil)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.MaxErrors)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coralc.yaml"), []byte("max_errors: 5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CORALC_MAX_ERRORS=99\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CORALC_MAX_ERRORS") })

	cfg, err := Load(dir, nil)
	require.NoError(t, err)
	require.Equal(t, 99, cfg.MaxErrors)
}

func TestLoadOverridesWinOverEnvAndYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coralc.yaml"), []byte("max_errors: 5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CORALC_MAX_ERRORS=99\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CORALC_MAX_ERRORS") })

	cfg, err := Load(dir, &Config{MaxErrors: 1})
	require.NoError(t, err)
	require.Equal(t, 1, cfg.MaxErrors)
}

func TestResolveColor(t *testing.T) {
	tests := []struct {
		name   string
		color  Color
		tty    bool
		expect bool
	}{
		{"always regardless of tty", ColorAlways, false, true},
		{"never regardless of tty", ColorNever, true, false},
		{"auto follows tty true", ColorAuto, true, true},
		{"auto follows tty false", ColorAuto, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Color: tt.color}
			require.Equal(t, tt.expect, cfg.ResolveColor(tt.tty))
		})
	}
}
