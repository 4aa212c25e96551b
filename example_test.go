package cairn_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/cairn"
)

// ExampleNew demonstrates a minimal two-target pipeline with an incremental
// second run.
func ExampleNew() {
	p, err := cairn.New()
	if err != nil {
		log.Fatal(err)
	}

	_ = p.Add("base", func(ctx context.Context, _ map[string]any) (any, error) {
		return 5, nil
	})
	_ = p.Add("double", func(ctx context.Context, inputs map[string]any) (any, error) {
		return inputs["base"].(int) * 2, nil
	}, "base")

	ctx := context.Background()
	if _, err := p.Run(ctx); err != nil {
		log.Fatal(err)
	}

	value, _ := p.Read(ctx, "double")
	fmt.Println(value)

	// The second run reuses both results.
	report, _ := p.Run(ctx)
	fmt.Println(report.Target("double").Status)

	// Output:
	// 10
	// skipped
}
