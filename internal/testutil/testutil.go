package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ProjectRoot walks up from this source file to the module root and checks
// that it holds the widen command.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get caller information")
	}

	for dir := filepath.Dir(filename); ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			main := filepath.Join(dir, "cmd", "widen", "main.go")
			if _, err := os.Stat(main); err != nil {
				return "", fmt.Errorf("module root %s has no widen command: %w", dir, err)
			}
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no go.mod above %s", filepath.Dir(filename))
		}
		dir = parent
	}
}
