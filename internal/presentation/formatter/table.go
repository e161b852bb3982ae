package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-kadlog/internal/util"
)

// TableFormatter renders the report for reading in a terminal.
type TableFormatter struct {
	headers  []string
	maxWidth int
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers: []string{
			"Hop", "Peer", "Dial Start", "Dial End", "Dial Error",
			"Query Start", "Query End", "Unfinished", "Target",
		},
		maxWidth: util.TerminalWidth(),
	}
}

func (f *TableFormatter) Format(w io.Writer, r *Report) error {
	var b strings.Builder

	rows := make([][]string, 0, len(r.Peers))
	for _, p := range r.Peers {
		target := ""
		if p.Target {
			target = "✓"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Hop),
			p.Label,
			formatSeconds(p.DialStart, p.HasDialStart),
			formatSeconds(p.DialEnd, p.HasDialEnd),
			formatSeconds(p.DialError, p.HasDialError),
			formatSeconds(p.QueryStart, p.HasQueryStart),
			formatSeconds(p.QueryEnd, p.HasQueryEnd),
			formatSeconds(p.QueryUnfinished, p.HasUnfinished),
			target,
		})
	}

	widths := f.calculateColumnWidths(rows)

	f.printBorder(&b, widths, "top")
	f.printRow(&b, f.headers, widths)
	f.printBorder(&b, widths, "middle")
	for _, row := range rows {
		f.printRow(&b, row, widths)
	}
	f.printBorder(&b, widths, "bottom")

	fmt.Fprintf(&b, "\nPeers: %d  Causal links: %d  Context canceled: %d  Targets determined: %d\n",
		r.NumPeers, len(r.Causality), sumCounts(r.Cancellations), sumCounts(r.Targets))

	if len(r.Ignored) > 0 {
		fmt.Fprintf(&b, "\nLines ignored while parsing (%d):\n", len(r.Ignored))
		for _, l := range r.Ignored {
			when := "     -"
			if l.Time != nil {
				when = fmt.Sprintf("%6.2f", *l.Time)
			}
			line := fmt.Sprintf("  %5d %s  %s", l.Line, when, l.Text)
			b.WriteString(util.TruncateToWidth(line, f.maxWidth))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// calculateColumnWidths determines the width of each column based on content
func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}
	for _, row := range rows {
		for i, value := range row {
			if w := util.GetDisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right + "\n")
}

// printRow prints a row; the peer label is left-aligned, everything else right-aligned
func (f *TableFormatter) printRow(b *strings.Builder, values []string, widths []int) {
	b.WriteString("│")
	for i, value := range values {
		b.WriteString(" ")
		b.WriteString(util.PadString(value, widths[i], i == 1))
		b.WriteString(" │")
	}
	b.WriteString("\n")
}

func formatSeconds(v float64, set bool) string {
	if !set {
		return "-"
	}
	return fmt.Sprintf("%.2fs", v)
}

func sumCounts(rows []MarkerRow) int {
	total := 0
	for _, m := range rows {
		total += m.Count
	}
	return total
}
