// New command creates a character sheet.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new character sheet",
	Long: `New creates a character sheet in the current game system: a fresh
backing store seeded with the root entity, the system's obligatory parts,
and their obligatory attributes.

Example:
  sheets --system dnd5e new "Euridice"`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	ref, err := cat.CreateSheet(args[0])
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	return printJSON(ref)
}
