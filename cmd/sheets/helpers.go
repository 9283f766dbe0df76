// Shared helpers for sheets CLI commands.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/sheets/internal/sqlite"
	"github.com/mesh-intelligence/sheets/pkg/types"
)

// openCatalog resolves directories and the system name, then loads the
// game system's catalog. The caller closes it.
func openCatalog() (*sqlite.Catalog, error) {
	cfg, err := engineConfig()
	if err != nil {
		return nil, err
	}
	cat, err := sqlite.Load(cfg)
	if err != nil {
		return nil, fmt.Errorf("load system: %w", err)
	}
	return cat, nil
}

// engineConfig assembles the engine configuration from flags, config.yaml
// and environment.
func engineConfig() (types.Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return types.Config{}, err
	}
	return types.Config{DataDir: dataDir, System: resolveSystem()}, nil
}

// printJSON writes any value as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
