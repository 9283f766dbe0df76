// Note command adds a note to a character sheet.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheets/pkg/types"
)

var (
	noteTitle   string
	noteContent string
)

var noteCmd = &cobra.Command{
	Use:   "note <name> <uuid>",
	Short: "Add a note to a character sheet",
	Args:  cobra.ExactArgs(2),
	RunE:  runNote,
}

func init() {
	noteCmd.Flags().StringVar(&noteTitle, "title", "", "note title (required)")
	noteCmd.Flags().StringVar(&noteContent, "content", "", "note body")
	noteCmd.MarkFlagRequired("title")
}

func runNote(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	in := types.InputNote{Title: noteTitle}
	if noteContent != "" {
		in.Content = &noteContent
	}
	note, err := cat.CreateNote(in, args[0], args[1])
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return printJSON(note)
}
