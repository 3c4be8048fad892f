package singleinstance

import (
	"os"
	"path/filepath"
)

// LockPath returns the path to the instance lock file.
// On Mac/Linux: ~/.config/statisfy/instance.lock
func LockPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "statisfy-instance.lock")
	}
	return filepath.Join(home, ".config", "statisfy", "instance.lock")
}
