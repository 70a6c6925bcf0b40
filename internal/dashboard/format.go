package dashboard

import (
	"fmt"
	"strings"
)

// FormatTable renders the dashboard as plain text tables, one per section.
func FormatTable(d Dashboard) string {
	sections := d.Sections()
	if len(sections) == 0 {
		return "No analytics available.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total words: %s\n", d.TotalWords)

	for _, s := range sections {
		sb.WriteString("\n")
		sb.WriteString(s.Title)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("-", len(s.Title)))
		sb.WriteString("\n")

		labelWidth, valueWidth := 0, 0
		for _, r := range s.Rows {
			labelWidth = max(labelWidth, len(r.Label))
			valueWidth = max(valueWidth, len(r.Value))
		}
		for _, r := range s.Rows {
			sb.WriteString(padRight(r.Label, labelWidth))
			sb.WriteString("  ")
			sb.WriteString(padLeft(r.Value, valueWidth))
			if r.Percent > 0 {
				sb.WriteString("  ")
				sb.WriteString(r.Bar())
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
