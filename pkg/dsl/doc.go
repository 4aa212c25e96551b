/*
Package dsl provides a fluent Go builder for declaring pipelines
programmatically.

It is an alternative to the YAML manifest: targets are declared with
type-checked Go code, which is useful for dynamic pipeline generation, unit
testing, and IDE autocompletion.

Example usage:

	package main

	import (
		"context"

		"github.com/aretw0/cairn/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Target("fetch").
			Define("fetch dataset v3").
			Do(func(ctx context.Context, inputs map[string]any) (any, error) {
				return download(ctx)
			})

		b.Target("clean").
			After("fetch").
			Do(func(ctx context.Context, inputs map[string]any) (any, error) {
				return scrub(inputs["fetch"])
			})

		targets, err := b.Build()
		// ... pass the targets to cairn.New(cairn.WithTargets(targets...))
	}
*/
package dsl
