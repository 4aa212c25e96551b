// Package tui renders run reports for human terminals.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/aretw0/cairn/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

var statusIcons = map[domain.Status]string{
	domain.StatusOK:      "✅",
	domain.StatusSkipped: "⏭️",
	domain.StatusError:   "❌",
	domain.StatusBlocked: "🚫",
}

// ReportMarkdown formats a run report as a markdown document.
func ReportMarkdown(report *domain.RunReport) string {
	var sb strings.Builder
	sb.WriteString("# Run Report\n\n")
	sb.WriteString(fmt.Sprintf("**%d targets** in %s — %d ok, %d skipped, %d errors, %d blocked\n\n",
		len(report.Targets),
		report.Duration.Round(time.Millisecond),
		report.Count(domain.StatusOK),
		report.Count(domain.StatusSkipped),
		report.Count(domain.StatusError),
		report.Count(domain.StatusBlocked),
	))

	sb.WriteString("| Target | Status | Duration |\n")
	sb.WriteString("|--------|--------|----------|\n")
	for _, t := range report.Targets {
		sb.WriteString(fmt.Sprintf("| %s | %s %s | %s |\n",
			t.Name, statusIcons[t.Status], t.Status, t.Duration.Round(time.Millisecond)))
	}

	var failures []domain.TargetReport
	for _, t := range report.Targets {
		if t.Error != "" {
			failures = append(failures, t)
		}
	}
	if len(failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for _, t := range failures {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", t.Name, t.Error))
		}
	}

	for _, t := range report.Targets {
		for _, w := range t.Warnings {
			sb.WriteString(fmt.Sprintf("\n> ⚠️ %s: %s\n", t.Name, w))
		}
	}

	return sb.String()
}

// WriteReport renders the report to w: styled via glamour on a terminal,
// plain markdown otherwise (pipes, CI logs).
func WriteReport(w io.Writer, report *domain.RunReport) {
	markdown := ReportMarkdown(report)

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if rendered, err := NewRenderer()(markdown); err == nil {
			fmt.Fprint(w, rendered)
			return
		}
	}
	fmt.Fprint(w, markdown)
}
