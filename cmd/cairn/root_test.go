package main

import (
	"testing"

	"github.com/spf13/cobra"
)

// Bare 'cairn' dispatches to the run handler, so the root command must
// carry the same flags the handler reads.
func TestRootCommandRunsByDefault(t *testing.T) {
	if rootCmd.Run == nil {
		t.Fatal("root command has no default action")
	}

	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		for _, name := range []string{"keep-going", "workers", "timeout", "json"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("%s: missing --%s flag", cmd.Name(), name)
			}
		}
	}
}
