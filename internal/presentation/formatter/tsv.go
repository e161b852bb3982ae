package formatter

import (
	"fmt"
	"io"
	"strings"
)

// TSVFormatter writes the gnuplot-ready dataset: five '#'-headed sections
// separated by two blank lines, so each section is a gnuplot index.
type TSVFormatter struct{}

func NewTSVFormatter() *TSVFormatter {
	return &TSVFormatter{}
}

func (f *TSVFormatter) Format(w io.Writer, r *Report) error {
	var b strings.Builder

	b.WriteString("#hop\tdial_st\tdial_end\tdial_err\tquery_st\tquery_end\tquery_unfinished\tpeer_hash\ttarget\n")
	for _, p := range r.Peers {
		fmt.Fprintf(&b, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%d\n",
			p.Hop, p.DialStart, p.DialEnd, p.DialError, p.QueryStart, p.QueryEnd, p.QueryUnfinished,
			p.Label, boolToInt(p.Target))
	}

	b.WriteString("\n\n#Causality\n")
	b.WriteString("#timeA\tpeerA\ttimeB\tpeerB\n")
	for _, e := range r.Causality {
		fmt.Fprintf(&b, "%f\t%d\t%f\t%d\n", e.FromTime, e.FromHop, e.ToTime, e.ToHop)
	}

	b.WriteString("\n\n#Context canceled\n")
	writeMarkers(&b, r.Cancellations)

	b.WriteString("\n\n#Time(s) when the K closest peers to the target ID were determined\n")
	writeMarkers(&b, r.Targets)

	b.WriteString("\n\n#Lines ignored while parsing\n")
	for _, l := range r.Ignored {
		when := ""
		if l.Time != nil {
			when = fmt.Sprintf(" (time: %.2f)", *l.Time)
		}
		fmt.Fprintf(&b, "%d%s: %s\n", l.Line, when, l.Text)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkers(b *strings.Builder, rows []MarkerRow) {
	b.WriteString("#time\tnumPeers\tlabel\n")
	for _, m := range rows {
		fmt.Fprintf(b, "%.2f\t%.2f\t%d\n", m.Time, m.Height, m.Count)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
