package main

import (
	"log/slog"
	"path/filepath"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/cairn"
	"github.com/aretw0/cairn/internal/logging"
	"github.com/aretw0/cairn/pkg/adapters/file"
	"github.com/aretw0/cairn/pkg/adapters/manifest"
	"github.com/aretw0/cairn/pkg/adapters/redis"
)

// newPipeline wires a Pipeline from the persistent flags: manifest loading
// from --dir, plus file-backed or Redis-backed state.
func newPipeline(cmd *cobra.Command, extra ...cairn.Option) (*cairn.Pipeline, error) {
	dir, _ := cmd.Flags().GetString("dir")
	manifestName, _ := cmd.Flags().GetString("manifest")
	stateDir, _ := cmd.Flags().GetString("state")
	redisAddr, _ := cmd.Flags().GetString("redis")
	verbose, _ := cmd.Flags().GetBool("verbose")

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := []cairn.Option{
		cairn.WithName(filepath.Base(absDir)),
		cairn.WithLogger(logging.New(level)),
		cairn.WithSource(manifest.NewLoader(filepath.Join(absDir, manifestName))),
	}

	if redisAddr != "" {
		client := backend.NewClient(&backend.Options{Addr: redisAddr})
		opts = append(opts,
			cairn.WithRecordStore(redis.NewRecordStore(client)),
			cairn.WithResultStore(redis.NewResultStore(client)),
			cairn.WithRunLock(redis.NewLocker(client, "cairn:"), time.Minute),
		)
	} else {
		base := filepath.Join(absDir, stateDir)
		opts = append(opts,
			cairn.WithRecordStore(file.NewRecordStore(filepath.Join(base, "records"))),
			cairn.WithResultStore(file.NewResultStore(filepath.Join(base, "results"))),
		)
	}

	opts = append(opts, extra...)
	return cairn.New(opts...)
}
