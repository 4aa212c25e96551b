/*
Package cairn is a minimal incremental build engine for Go programs.

It runs named targets in dependency order, fingerprints each target's
definition together with its upstream fingerprints, and skips any target
whose fingerprint matches the previous run. Think of it as the core loop of
a build system or a data pipeline runner, packaged as a library.

# Concept

A pipeline is a set of targets forming a DAG. Each target carries a command
(a Go function or a shell script) and a textual definition that acts as its
staleness signal. On every run the engine validates the graph, walks it in
topological order with a worker pool, and for each target either reuses the
stored result or executes the command and persists the outcome. Records and
results live behind small store interfaces, so state can sit in memory, on
disk, or in Redis without the engine caring.

# Key Features

  - Incremental execution: unchanged targets are skipped, transitively.
  - Deterministic fingerprints: order-insensitive hashing of definitions
    and upstream fingerprints.
  - Explicit outcomes: every target finishes ok, skipped, error or blocked.
  - Hexagonal architecture: stores, target sources and transports are
    adapters around a pure core.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/cairn"
	)

	func main() {
		p, err := cairn.New()
		if err != nil {
			log.Fatal(err)
		}

		p.Add("base", func(ctx context.Context, _ map[string]any) (any, error) {
			return 5, nil
		})
		p.Add("double", func(ctx context.Context, inputs map[string]any) (any, error) {
			return inputs["base"].(int) * 2, nil
		}, "base")

		report, err := p.Run(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("ran %d targets", len(report.Targets))
	}

Durable state is a configuration choice:

	p, _ := cairn.New(
		cairn.WithRecordStore(file.NewRecordStore(".cairn/records")),
		cairn.WithResultStore(file.NewResultStore(".cairn/results")),
	)
*/
package cairn
