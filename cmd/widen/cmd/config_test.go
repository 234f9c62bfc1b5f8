package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "widen.yaml")
	assert.FileExists(t, filepath.Join(dir, "widen.yaml"))

	_, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)

	custom := filepath.Join(dir, "etc", "custom.yaml")
	_, err = execute(t, "config", "init", custom)
	require.NoError(t, err)
	assert.FileExists(t, custom)
}

func TestConfigInit_IgnoresBrokenConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widen.yaml"), []byte("output:\n  quality: 0\n"), 0o644))

	_, err := execute(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	isolate(t)

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: info")
	assert.Contains(t, out, "width: 3840")

	out, err = execute(t, "config", "show", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: debug")

	_, err = execute(t, "config", "show", "--format", "xml")
	require.Error(t, err)
}

func TestConfigShow_JSONWithEnvAndFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widen.yaml"), []byte("output:\n  suffix: -uhd\n"), 0o644))
	t.Setenv("WIDEN_OUTPUT_QUALITY", "85")

	out, err := execute(t, "config", "show", "--format", "json")
	require.NoError(t, err)

	start := 0
	for i, r := range out {
		if r == '{' {
			start = i
			break
		}
	}
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &decoded))
	output := decoded["output"].(map[string]any)
	assert.Equal(t, "-uhd", output["suffix"])
	assert.InDelta(t, 85, output["quality"], 0)
}

func TestConfigPaths(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, "config", "paths")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, ".config", "widen"))
	assert.Contains(t, out, "/etc/widen")
}
