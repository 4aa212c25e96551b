package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/cairn/internal/presentation/graph"
	"github.com/aretw0/cairn/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		manifest *domain.GraphManifest
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name: "Root Node Shape",
			manifest: &domain.GraphManifest{
				Targets: []domain.Summary{
					{Name: "fetch"},
					{Name: "clean", DependsOn: []string{"fetch"}},
				},
				Edges: []domain.Edge{{From: "fetch", To: "clean"}},
			},
			contains: []string{
				"fetch((\"fetch\"))",
				"clean[\"clean\"]",
				"fetch --> clean",
			},
		},
		{
			name: "ID Sanitization",
			manifest: &domain.GraphManifest{
				Targets: []domain.Summary{
					{Name: "train.set"},
					{Name: "hyphen-ated", DependsOn: []string{"train.set"}},
				},
				Edges: []domain.Edge{{From: "train.set", To: "hyphen-ated"}},
			},
			contains: []string{
				"train_set((\"train.set\"))",
				"hyphen_ated[\"hyphen-ated\"]",
				"train_set --> hyphen_ated",
			},
		},
		{
			name: "Status Overlay",
			manifest: &domain.GraphManifest{
				Targets: []domain.Summary{
					{Name: "a"},
					{Name: "b", DependsOn: []string{"a"}},
				},
				Edges: []domain.Edge{{From: "a", To: "b"}},
			},
			overlay: &graph.Overlay{Statuses: map[string]domain.Status{
				"a": domain.StatusError,
				"b": domain.StatusBlocked,
			}},
			contains: []string{
				"classDef error",
				"class a error;",
				"class b blocked;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.manifest, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestOverlayFromReport(t *testing.T) {
	if graph.OverlayFromReport(nil) != nil {
		t.Error("nil report should yield nil overlay")
	}

	overlay := graph.OverlayFromReport(&domain.RunReport{
		Targets: []domain.TargetReport{
			{Name: "a", Status: domain.StatusOK},
			{Name: "b", Status: domain.StatusSkipped},
		},
	})
	if overlay.Statuses["a"] != domain.StatusOK || overlay.Statuses["b"] != domain.StatusSkipped {
		t.Errorf("unexpected overlay: %v", overlay.Statuses)
	}
}
