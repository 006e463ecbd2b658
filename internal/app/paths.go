package app

import (
	"os"
)

const (
	// HomeEnv overrides the default home directory
	HomeEnv     = "PHASETRACK_HOME"
	DefaultHome = ".phasetrack"
)

// HomeDir returns the directory holding setting.json, based on PHASETRACK_HOME
func HomeDir() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	return DefaultHome
}
