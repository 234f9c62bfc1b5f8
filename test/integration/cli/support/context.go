package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastOutput   string
	LastError    error
	LastExitCode int
	LastDuration time.Duration

	// Scenario working directory; commands run here and HOME points here.
	WorkDir string
	EnvVars []string
}

// NewTestContext creates a context with a fresh working directory.
func NewTestContext() (*TestContext, error) {
	dir, err := os.MkdirTemp("", "widen-cli-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{
		WorkDir: dir,
		EnvVars: []string{
			"HOME=" + dir,
			"XDG_CONFIG_HOME=" + filepath.Join(dir, ".config"),
		},
	}, nil
}

// Cleanup removes the scenario working directory.
func (testCtx *TestContext) Cleanup() error {
	if err := os.RemoveAll(testCtx.WorkDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", testCtx.WorkDir, err)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, name+"="+value)
}

// path resolves a scenario-relative path.
func (testCtx *TestContext) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.WorkDir, name)
}

// substitute expands {workdir} in command lines.
func (testCtx *TestContext) substitute(command string) string {
	return strings.ReplaceAll(command, "{workdir}", testCtx.WorkDir)
}
