package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cairn",
	Short: "Cairn is an incremental pipeline runner",
	Long: `Cairn runs declared targets in dependency order and skips the ones
whose inputs have not changed since the previous run.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the pipeline manifest")
	rootCmd.PersistentFlags().String("manifest", "pipeline.yaml", "Manifest file name inside the project directory")
	rootCmd.PersistentFlags().String("state", ".cairn", "State directory for records and results (relative to --dir)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address; when set, state lives in Redis instead of the state directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}
