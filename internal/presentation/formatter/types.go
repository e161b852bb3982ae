package formatter

import (
	"io"
	"time"

	"github.com/penwyp/go-kadlog/internal/core/timeline"
)

// Unset is the relative time reported for events that never occurred:
// one second before the start of the lookup.
const Unset = -1.0

// Report is the plot-ready view of a timeline. All times are seconds
// relative to the first timestamped line.
type Report struct {
	NumPeers      int          `json:"num_peers"`
	Peers         []PeerRow    `json:"peers"`
	Causality     []EdgeRow    `json:"causality"`
	Cancellations []MarkerRow  `json:"context_canceled"`
	Targets       []MarkerRow  `json:"targets_determined"`
	Ignored       []IgnoredRow `json:"ignored_lines"`
}

type PeerRow struct {
	Hop             int     `json:"hop"`
	DialStart       float64 `json:"dial_st"`
	DialEnd         float64 `json:"dial_end"`
	DialError       float64 `json:"dial_err"`
	QueryStart      float64 `json:"query_st"`
	QueryEnd        float64 `json:"query_end"`
	QueryUnfinished float64 `json:"query_unfinished"`
	Label           string  `json:"peer_hash"`
	Key             string  `json:"kademlia_id"`
	Target          bool    `json:"target"`

	// which of the times above happened; an unset time reads Unset
	HasDialStart, HasDialEnd, HasDialError    bool `json:"-"`
	HasQueryStart, HasQueryEnd, HasUnfinished bool `json:"-"`
}

type EdgeRow struct {
	FromTime float64 `json:"time_a"`
	FromHop  int     `json:"peer_a"`
	ToTime   float64 `json:"time_b"`
	ToHop    int     `json:"peer_b"`
}

// MarkerRow is a vertical marker line; Height is numPeers+1 so the line
// spans every row of the plot.
type MarkerRow struct {
	Time   float64 `json:"time"`
	Height float64 `json:"num_peers"`
	Count  int     `json:"label"`
}

type IgnoredRow struct {
	Line   int      `json:"line"`
	Time   *float64 `json:"time,omitempty"`
	Text   string   `json:"text"`
	Reason string   `json:"reason,omitempty"`
}

// Formatter renders a report
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// NewReport computes the relative, plot-ready values of a finished timeline.
func NewReport(tl *timeline.Timeline, labelLen int) *Report {
	start := tl.Start().At
	end := tl.End()
	numPeers := tl.NumPeers()

	rel := func(t time.Time) float64 {
		return relativeSeconds(start, t)
	}
	relMark := func(m timeline.Mark) (float64, bool) {
		if !m.Set {
			return Unset, false
		}
		return rel(m.At), true
	}

	r := &Report{
		NumPeers:      numPeers,
		Peers:         make([]PeerRow, 0, numPeers),
		Causality:     []EdgeRow{},
		Cancellations: []MarkerRow{},
		Targets:       []MarkerRow{},
		Ignored:       []IgnoredRow{},
	}

	for i, rec := range tl.Peers() {
		row := PeerRow{
			Hop:             i + 1,
			QueryUnfinished: Unset,
			Label:           rec.Key.Short(labelLen),
			Key:             rec.Key.String(),
			Target:          rec.Target,
		}
		row.DialStart, row.HasDialStart = relMark(rec.DialStart)
		row.DialEnd, row.HasDialEnd = relMark(rec.DialEnd)
		row.DialError, row.HasDialError = relMark(rec.DialError)
		row.QueryStart, row.HasQueryStart = relMark(rec.QueryStart)
		row.QueryEnd, row.HasQueryEnd = relMark(rec.QueryEnd)
		// started but never ended: open until the targets were determined
		if row.QueryStart > row.QueryEnd && end.Set {
			row.QueryUnfinished, row.HasUnfinished = rel(end.At), true
		}
		r.Peers = append(r.Peers, row)
	}

	for _, e := range tl.Edges() {
		from := tl.Hop(e.From)
		to := tl.Hop(e.To)
		if to == 0 {
			to = numPeers + 1
		}
		r.Causality = append(r.Causality, EdgeRow{
			FromTime: rel(e.FromAt),
			FromHop:  from,
			ToTime:   rel(e.ToAt),
			ToHop:    to,
		})
	}

	height := float64(numPeers + 1)
	for _, tick := range tl.Cancellations().Ticks() {
		r.Cancellations = append(r.Cancellations, MarkerRow{Time: rel(tick.At), Height: height, Count: tick.Count})
	}
	for _, tick := range tl.Targets().Ticks() {
		r.Targets = append(r.Targets, MarkerRow{Time: rel(tick.At), Height: height, Count: tick.Count})
	}

	for _, u := range tl.Unmatched() {
		row := IgnoredRow{Line: u.Line, Text: u.Text, Reason: u.Reason}
		if u.At.Set {
			t := rel(u.At.At)
			row.Time = &t
		}
		r.Ignored = append(r.Ignored, row)
	}

	return r
}

// relativeSeconds is t-start in seconds, rounded from whole microseconds so
// that values such as 5.565 are the nearest double and format half-up.
func relativeSeconds(start, t time.Time) float64 {
	return float64(t.Sub(start).Microseconds()) / 1e6
}
