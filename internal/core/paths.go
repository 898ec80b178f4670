package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir string
	DataDir string
	LogFile string
	RcFile  string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		defaultPaths = newPaths(homeDir)

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func newPaths(homeDir string) *Paths {
	dataDir := filepath.Join(homeDir, ".local", "share", "llmscript")
	return &Paths{
		HomeDir: homeDir,
		DataDir: dataDir,
		LogFile: filepath.Join(dataDir, "llmscript.log"),
		RcFile:  filepath.Join(homeDir, ".llmscriptrc"),
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func RcFile() string {
	ensureDefaultPaths()
	return defaultPaths.RcFile
}
