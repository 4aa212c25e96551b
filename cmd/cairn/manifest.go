package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// manifestCmd represents the manifest command
var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the validated pipeline manifest",
	Long:  `Validates the declarations and prints the targets, edges and execution order as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		pipeline, err := newPipeline(cmd)
		if err != nil {
			fmt.Printf("Error initializing pipeline: %v\n", err)
			os.Exit(1)
		}

		manifest, err := pipeline.Manifest(cmd.Context())
		if err != nil {
			fmt.Printf("Error building manifest: %v\n", err)
			os.Exit(1)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(manifest); err != nil {
			fmt.Printf("Error encoding manifest: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
}
