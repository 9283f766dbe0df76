// Root command for the sheets CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheets/internal/paths"
	"github.com/mesh-intelligence/sheets/pkg/sheets"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagSystem    string
)

// Values loaded from config.yaml by PersistentPreRunE so all subcommands
// can use them.
var (
	configDataDir string
	configSystem  string
)

var rootCmd = &cobra.Command{
	Use:     "sheets",
	Short:   "Sheets manages schema-validated character sheets in local stores",
	Version: sheets.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		configSystem = cfg.GetString(cfgKeySystem)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.sheets)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.sheets-db)")
	rootCmd.PersistentFlags().StringVar(&flagSystem, "system", "", "game system name (default: config.yaml system)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initSystemCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(noteCmd)
}

// resolveDataDir returns the data directory path following the precedence:
// --data-dir flag > config.yaml data_dir > SHEETS_DATA_DIR env > default
// $(CWD)/.sheets-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > SHEETS_CONFIG_DIR env > DefaultConfigDir().
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// resolveSystem returns the game system name: --system flag > config.yaml.
func resolveSystem() string {
	if flagSystem != "" {
		return flagSystem
	}
	return configSystem
}
