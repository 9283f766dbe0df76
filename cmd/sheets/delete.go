// Delete command destroys a character sheet.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name> <uuid>",
	Short: "Delete a character sheet and its backing store",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.DeleteCharacter(args[0], args[1]); err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	fmt.Printf("character %q deleted\n", args[0])
	return nil
}
