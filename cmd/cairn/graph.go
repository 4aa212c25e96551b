package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dependency graph visualization",
	Long:  `Validates the pipeline and outputs a Mermaid diagram (graph TD) of the target dependencies.`,
	Run: func(cmd *cobra.Command, args []string) {
		pipeline, err := newPipeline(cmd)
		if err != nil {
			fmt.Printf("Error initializing pipeline: %v\n", err)
			os.Exit(1)
		}

		output, err := pipeline.Mermaid(cmd.Context())
		if err != nil {
			fmt.Printf("Error building graph: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
