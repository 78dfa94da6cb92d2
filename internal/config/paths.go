package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the per-tool XDG subdirectories.
const AppName = "emc"

// Paths lists the files emc reads and writes.
type Paths struct {
	Config   string // $XDG_CONFIG_HOME/emc/config.yaml
	Registry string // $XDG_DATA_HOME/emc/emc.json
	Worlds   string // $XDG_DATA_HOME/emc/worlds
	Log      string // $XDG_STATE_HOME/emc/emc.log
}

// DefaultPaths resolves Paths against the XDG base directories.
func DefaultPaths() Paths {
	return Paths{
		Config:   filepath.Join(xdg.ConfigHome, AppName, "config.yaml"),
		Registry: filepath.Join(xdg.DataHome, AppName, "emc.json"),
		Worlds:   filepath.Join(xdg.DataHome, AppName, "worlds"),
		Log:      filepath.Join(xdg.StateHome, AppName, "emc.log"),
	}
}
