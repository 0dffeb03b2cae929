package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/firaterror/makina404/internal/engine"
)

var detectionHeaders = []string{"Host", "URL", "Screenshot", "Alert"}

// WriteDetections renders the confirmed-404 detections as a styled
// terminal table.
func WriteDetections(w io.Writer, result *engine.ScanResult, noColor bool) {
	if len(result.Detections) == 0 {
		fmt.Fprintln(w, "\nNo takeover candidates detected.")
		return
	}

	var rows [][]string
	for _, det := range result.Detections {
		capture := "failed"
		if det.Captured {
			capture = "captured"
		}
		alerted := "-"
		switch {
		case det.Alerted:
			alerted = "sent"
		case det.Captured && det.FailureReason != "":
			alerted = "failed"
		}
		rows = append(rows, []string{det.Host, det.URL, capture, alerted})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i][0] < rows[j][0]
	})

	fmt.Fprintln(w)

	if noColor {
		writeSimpleTable(w, rows)
		return
	}

	t := table.New().
		Headers(detectionHeaders...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
			}
			return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
		})

	for _, row := range rows {
		t.Row(row...)
	}

	fmt.Fprintln(w, t.Render())
}

func writeSimpleTable(w io.Writer, rows [][]string) {
	widths := make([]int, len(detectionHeaders))
	for i, h := range detectionHeaders {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range detectionHeaders {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		fmt.Fprintf(w, "%-*s", widths[i], h)
	}
	fmt.Fprintln(w)

	for i, width := range widths {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", width))
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprintf(w, "%-*s", widths[i], cell)
		}
		fmt.Fprintln(w)
	}
}
