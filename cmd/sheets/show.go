// Show command loads one complete character.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <name> <uuid>",
	Short: "Print one character's complete sheet as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	doc, err := cat.LoadCharacter(args[0], args[1])
	if err != nil {
		return fmt.Errorf("load character: %w", err)
	}
	return printJSON(doc)
}
