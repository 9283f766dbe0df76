// Version command for the sheets CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheets/pkg/sheets"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sheets version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sheets", sheets.Version)
	},
}
