package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/cairn"
	"github.com/aretw0/cairn/internal/presentation/tui"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the pipeline incrementally",
	Long: `Validates the dependency graph and executes every stale target,
reusing stored results for targets whose inputs have not changed.`,
	Run: func(cmd *cobra.Command, args []string) {
		keepGoing, _ := cmd.Flags().GetBool("keep-going")
		workers, _ := cmd.Flags().GetInt("workers")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		jsonMode, _ := cmd.Flags().GetBool("json")

		pipeline, err := newPipeline(cmd,
			cairn.WithKeepGoing(keepGoing),
			cairn.WithWorkers(workers),
			cairn.WithTargetTimeout(timeout),
		)
		if err != nil {
			fmt.Printf("Error initializing pipeline: %v\n", err)
			os.Exit(1)
		}

		if !jsonMode {
			tui.PrintBanner()
		}

		// Ctrl+C cancels the run; in-flight targets see the cancellation.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, runErr := pipeline.Run(ctx)
		if report != nil {
			if jsonMode {
				_ = json.NewEncoder(os.Stdout).Encode(report)
			} else {
				tui.WriteReport(os.Stdout, report)
			}
		}
		if runErr != nil {
			if !jsonMode {
				fmt.Printf("Run failed: %v\n", runErr)
			}
			os.Exit(1)
		}
	},
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("keep-going", "k", false, "Continue independent branches after a failure")
	cmd.Flags().Int("workers", 4, "Number of concurrent workers")
	cmd.Flags().Duration("timeout", 0, "Default per-target timeout (e.g. 30s); zero means none")
	cmd.Flags().Bool("json", false, "Print the run report as JSON")
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)

	// Bare 'cairn' runs the pipeline, so the root carries the same flags.
	addRunFlags(rootCmd)
	rootCmd.Run = runCmd.Run
}
