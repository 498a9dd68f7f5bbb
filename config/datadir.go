package config

import (
	"os"
	"path/filepath"
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zkballot"
	}
	return filepath.Join(home, ".zkballot")
}
