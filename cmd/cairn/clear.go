package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear [target...]",
	Short: "Drop persisted state so targets recompute",
	Long: `Removes run records and stored results for the given targets, or for
the whole pipeline when no targets are named. The next run recomputes them.`,
	Run: func(cmd *cobra.Command, args []string) {
		pipeline, err := newPipeline(cmd)
		if err != nil {
			fmt.Printf("Error initializing pipeline: %v\n", err)
			os.Exit(1)
		}

		if err := pipeline.Invalidate(cmd.Context(), args...); err != nil {
			fmt.Printf("Error clearing state: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			fmt.Println("Cleared all pipeline state")
		} else {
			fmt.Printf("Cleared state for %d target(s)\n", len(args))
		}
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
