package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/widen/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate moves the test into an empty directory and hides user configs.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	return dir
}

// execute runs a fresh command tree on a private viper instance.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(config.NewLoaderWith(viper.New()))
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(buf.String()), err
}

// writeSmallConfig writes a config with a small canvas so conversions stay fast.
func writeSmallConfig(t *testing.T, dir string, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "small.yaml")
	content := `canvas:
  width: 384
  height: 216
compositor:
  blur_radius: 5
cascade:
  strategies: [center]
detectors:
  face_backend: none
  body_backend: none
batch:
  progress: none
` + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand(config.NewLoaderWith(viper.New()))
	assert.Equal(t, "widen", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.True(t, root.HasSubCommands())

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"image", "batch", "config", "detectors"})

	for _, flag := range []string{"config", "verbose", "log-level", "models-dir", "version"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCommandHelp(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "3840x2160")
	assert.Contains(t, out, "face (anchored at the hair top), body, center")
	assert.Contains(t, out, "edge-density")
}

func TestRootCommandVersion(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "widen version dev")
}

func TestRootCommandInvalidConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("canvas:\n  width: 1000\n  height: 1000\n"), 0o644))

	_, err := execute(t, "config", "show", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "16:9")
}

func TestRootCommandInvalidFlag(t *testing.T) {
	isolate(t)
	_, err := execute(t, "--no-such-flag")
	require.Error(t, err)
}
