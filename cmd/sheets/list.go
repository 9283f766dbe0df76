// List command enumerates the characters of a game system.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the characters of the current game system",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	refs, err := cat.ListCharacters()
	if err != nil {
		return fmt.Errorf("list characters: %w", err)
	}
	return printJSON(refs)
}
