// CLAUDE:SUMMARY Markdown rendering of a Report: title, executive summary bullets, one heading per section.
package report

import (
	"fmt"
	"strings"
)

// Markdown renders the report as a standalone document.
func (r *Report) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Watch-list report, %s\n\n", r.GeneratedAt.Format("2006-01-02"))

	sb.WriteString("## Executive summary\n\n")
	for _, bullet := range r.ExecutiveSummary {
		sb.WriteString("- " + bullet + "\n")
	}
	sb.WriteString("\n")

	for _, section := range r.Sections {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", section.Entity, section.Narrative)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
