package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widen.yaml")
	writeFile(t, path, `
log_level: debug
compositor:
  residual: seam
cascade:
  strategies: [edge, face, center]
  hair:
    threshold: 40
output:
  dir: out
  format: webp
`)

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "seam", cfg.Compositor.Residual)
	assert.Equal(t, []string{"edge", "face", "center"}, cfg.Cascade.Strategies)
	assert.InDelta(t, 40, cfg.Cascade.Hair.Threshold, 1e-9)
	assert.Equal(t, 100, cfg.Cascade.Hair.ScanDepth, "unset keys keep their defaults")
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "webp", cfg.Output.Format)
	assert.Equal(t, 98, cfg.Output.Quality)
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widen.yaml")
	writeFile(t, path, "output:\n  quality: 80\n")
	t.Setenv("WIDEN_OUTPUT_QUALITY", "90")
	t.Setenv("WIDEN_PORTRAIT_TRIM_FUZZ_PERCENT", "7.5")

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Output.Quality)
	assert.InDelta(t, 7.5, cfg.Portrait.Trim.FuzzPercent, 1e-9)
}

func TestLoadWithFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widen.yaml")
	writeFile(t, path, "canvas:\n  width: 1000\n  height: 1000\n")

	_, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "16:9")
}

func TestLoadWithFile_Missing(t *testing.T) {
	_, err := NewLoaderWith(viper.New()).LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_SearchesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "widen.yaml"), "output:\n  report_format: csv\n")
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output.ReportFormat)
	assert.Equal(t, "widen.yaml", filepath.Base(loader.GetConfigFileUsed()))
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Output, cfg.Output)
}

func TestResolvePicksUpOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v := viper.New()
	loader := NewLoaderWith(v)
	_, err := loader.Load()
	require.NoError(t, err)

	v.Set("output.dir", "elsewhere")
	cfg, err := loader.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.Output.Dir)
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "widen.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path, false))
	require.Error(t, GenerateDefaultConfigFile(path, false), "existing files need force")
	require.NoError(t, GenerateDefaultConfigFile(path, true))

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Cascade.Strategies, cfg.Cascade.Strategies)
}

func TestGetConfigSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	paths := GetConfigSearchPaths()
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, "/xdg/widen")
	assert.Equal(t, "/etc/widen", paths[len(paths)-1])
}
