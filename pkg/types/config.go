package types

import (
	"errors"
	"path/filepath"
)

// Config locates a game system: the directory holding the store files and
// the system name. The root catalog lives at DataDir/<System>.db and each
// character store next to it.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`
	System  string `json:"system" yaml:"system"`
}

// Config validation errors.
var (
	ErrNoDataDir = errors.New("data directory not set")
	ErrNoSystem  = errors.New("system name not set")
)

// Validate checks that both fields are present and the system name is a
// safe file-name component.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	if c.System == "" {
		return ErrNoSystem
	}
	return CheckName(c.System)
}

// RootPath returns the path of the root catalog store.
func (c Config) RootPath() string {
	return filepath.Join(c.DataDir, c.System+".db")
}
