// Init-system command creates a new game system from a schema document.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheets/internal/sqlite"
)

var initSystemCmd = &cobra.Command{
	Use:   "init-system <schema.toml>",
	Short: "Create a new game system from a TOML schema document",
	Long: `Init-system reads a TOML schema document defining the permitted parts
and permitted attributes of a game system, creates the system's root catalog
store under the data directory, and fills the permitted tables.

The system name comes from --system or config.yaml.

Example:
  sheets --system dnd5e init-system ./dnd5e.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runInitSystem,
}

func runInitSystem(cmd *cobra.Command, args []string) error {
	cfg, err := engineConfig()
	if err != nil {
		return err
	}

	doc, err := sqlite.LoadSystemDoc(args[0])
	if err != nil {
		return err
	}

	cat, err := sqlite.CreateSystem(cfg, doc)
	if err != nil {
		return fmt.Errorf("create system: %w", err)
	}
	defer cat.Close()

	fmt.Printf("system %q created at %s\n", cfg.System, cfg.RootPath())
	return nil
}
