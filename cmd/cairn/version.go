package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cairn"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cairn",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cairn version %s\n", cairn.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
