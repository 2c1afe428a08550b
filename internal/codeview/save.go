package codeview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the name generated scripts are saved under
const FileName = "automation.py"

// ErrExists is returned by Save when the target exists and force is false
var ErrExists = errors.New("file already exists")

// Save writes code to dir/automation.py and returns the path written.
// An existing file is only replaced when force is set.
func Save(dir, code string, force bool) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrExists)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(code), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to save %s: %w", FileName, err)
	}
	return path, nil
}
