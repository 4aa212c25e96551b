// Package graph renders the dependency DAG as Mermaid flowchart syntax.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cairn/pkg/domain"
)

// Overlay carries the last run's outcomes to visualize on the graph.
type Overlay struct {
	Statuses map[string]domain.Status
}

// OverlayFromReport builds an overlay from a run report.
func OverlayFromReport(report *domain.RunReport) *Overlay {
	if report == nil {
		return nil
	}
	statuses := make(map[string]domain.Status, len(report.Targets))
	for _, t := range report.Targets {
		statuses[t.Name] = t.Status
	}
	return &Overlay{Statuses: statuses}
}

// GenerateMermaid produces a Mermaid flowchart from a graph manifest.
// Edges point from dependency to dependent, so the diagram reads in
// execution order. If an overlay is given, nodes are styled by their last
// run status.
func GenerateMermaid(manifest *domain.GraphManifest, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, target := range manifest.Targets {
		safeID := sanitizeMermaidID(target.Name)

		label := target.Name
		if len(target.DependsOn) == 0 {
			// Roots render as circles so entry points stand out.
			sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", safeID, label))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, label))
	}

	for _, edge := range manifest.Edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n",
			sanitizeMermaidID(edge.From), sanitizeMermaidID(edge.To)))
	}

	if overlay != nil && len(overlay.Statuses) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for high contrast regardless of theme.
		sb.WriteString("    classDef ok fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef error fill:#ffebee,stroke:#c62828,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef blocked fill:#eceff1,stroke:#546e7a,stroke-dasharray:4,color:#000;\n")

		for _, target := range manifest.Targets {
			status, ok := overlay.Statuses[target.Name]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n",
				sanitizeMermaidID(target.Name), string(status)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
