package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/docsections/internal/extract"
	"github.com/dgallion1/docsections/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1)
)

func printHeader(w io.Writer, filename string) {
	fmt.Fprintln(w, titleStyle.Render("Document Section Extractor"))
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("File:"), filename)
}

func printWarnings(w io.Writer, warnings []extract.Warning) {
	for _, warn := range warnings {
		fmt.Fprintln(w, warnStyle.Render("! "+warn.String()))
	}
}

// printSummary renders record counts per section type and the model latency snapshot.
func printSummary(w io.Writer, doc *pipeline.Document, out string, stats extract.StatsSnapshot) {
	counts := doc.Summary()
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	content := fmt.Sprintf("%s %d  %s %d  %s %d",
		dimStyle.Render("Pages:"), doc.Pages,
		dimStyle.Render("Records:"), len(doc.Records),
		dimStyle.Render("Warnings:"), len(doc.Warnings),
	)
	for _, t := range types {
		content += fmt.Sprintf("\n  %s %d", dimStyle.Render(t+":"), counts[t])
	}
	if stats.Calls > 0 {
		content += fmt.Sprintf("\n%s %d calls, %d failed, p50 %.0fms, p95 %.0fms",
			dimStyle.Render("Model:"), stats.Calls, stats.Failures, stats.P50Ms, stats.P95Ms)
	}
	content += fmt.Sprintf("\n%s %s", dimStyle.Render("SHA-256:"), doc.ContentHash)
	content += fmt.Sprintf("\n%s %s", dimStyle.Render("Output:"), successStyle.Render(out))

	fmt.Fprintln(w, boxStyle.Render(content))
}
