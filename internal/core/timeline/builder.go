package timeline

import (
	"fmt"
	"time"

	"github.com/penwyp/go-kadlog/internal/core/event"
	"github.com/penwyp/go-kadlog/internal/core/peerid"
	"github.com/penwyp/go-kadlog/internal/util"
)

// Timeline accumulates the state of one lookup log during a single forward
// pass. It is owned by the caller driving the pass and is read-only once
// the input is exhausted.
type Timeline struct {
	records map[peerid.Key]*PeerRecord
	order   []peerid.Key
	hop     map[peerid.Key]int

	edges   []Edge
	pending *response

	cancellations *Frequency
	targets       *Frequency
	unmatched     []Unmatched

	start   Mark
	end     Mark
	current Mark
}

// New creates an empty timeline
func New() *Timeline {
	return &Timeline{
		records:       make(map[peerid.Key]*PeerRecord),
		hop:           make(map[peerid.Key]int),
		cancellations: newFrequency(),
		targets:       newFrequency(),
	}
}

// Observe registers the leading timestamp of a line. It becomes the current
// timestamp for later lines without one; the first one seen is the start time.
func (tl *Timeline) Observe(t time.Time) {
	tl.current = MarkAt(t)
	if !tl.start.Set {
		tl.start = MarkAt(t)
	}
}

// Apply updates the timeline with a classified event.
func (tl *Timeline) Apply(ev event.Event) {
	switch ev.Kind {
	case event.Querying:
		rec := tl.discover(ev.Peer)
		if rec.DialStart.Set {
			rec.DialEnd = MarkAt(ev.At)
		}
		rec.QueryStart = MarkAt(ev.At)

	case event.Dialing:
		rec := tl.discover(ev.Peer)
		rec.DialStart = MarkAt(ev.At)
		// provisional until the dial resolves
		rec.DialEnd = MarkAt(ev.At)
		if tl.pending != nil {
			tl.edges = append(tl.edges, Edge{
				From:   tl.pending.peer,
				FromAt: tl.pending.at,
				To:     ev.Peer,
				ToAt:   ev.At,
			})
		}

	case event.ResponseReceived:
		rec := tl.record(ev.Peer)
		rec.QueryEnd = MarkAt(ev.At)
		tl.pending = &response{peer: ev.Peer, at: ev.At}

	case event.DialFailed:
		rec := tl.record(ev.Peer)
		rec.DialError = MarkAt(ev.At)
		rec.DialEnd = MarkAt(ev.At)
		tl.pending = &response{peer: ev.Peer, at: ev.At}

	case event.ContextCanceled:
		tl.cancellations.Add(ev.At)

	case event.TargetObserved:
		tl.targets.Add(ev.At)
		tl.end = MarkAt(ev.At)
		tl.record(ev.Peer).Target = true

	default:
		util.LogWarnf("Ignoring event of unknown kind %s", ev.Kind)
	}
}

// Skip records a line that produced no event, stamped with the current timestamp.
func (tl *Timeline) Skip(lineNum int, text string, reason error) {
	u := Unmatched{Line: lineNum, At: tl.current, Text: text}
	if reason != nil {
		u.Reason = reason.Error()
	}
	tl.unmatched = append(tl.unmatched, u)
}

// record returns the record for key, creating it on first reference.
func (tl *Timeline) record(key peerid.Key) *PeerRecord {
	rec, ok := tl.records[key]
	if !ok {
		rec = &PeerRecord{Key: key}
		tl.records[key] = rec
	}
	return rec
}

// discover is record plus appending key to the discovery order if new.
func (tl *Timeline) discover(key peerid.Key) *PeerRecord {
	if _, ok := tl.hop[key]; !ok {
		tl.order = append(tl.order, key)
		tl.hop[key] = len(tl.order)
	}
	return tl.record(key)
}

// Peers returns the records of discovered peers in discovery order.
func (tl *Timeline) Peers() []PeerRecord {
	peers := make([]PeerRecord, 0, len(tl.order))
	for _, key := range tl.order {
		peers = append(peers, *tl.records[key])
	}
	return peers
}

// Record returns a copy of the record for key, if any event referenced it.
func (tl *Timeline) Record(key peerid.Key) (PeerRecord, bool) {
	rec, ok := tl.records[key]
	if !ok {
		return PeerRecord{}, false
	}
	return *rec, true
}

// Hop returns the 1-based discovery index of key, or 0 if it was never
// dialed or queried.
func (tl *Timeline) Hop(key peerid.Key) int {
	return tl.hop[key]
}

// NumPeers returns the number of discovered peers
func (tl *Timeline) NumPeers() int {
	return len(tl.order)
}

// Edges returns the causal edges in emission order.
func (tl *Timeline) Edges() []Edge {
	out := make([]Edge, len(tl.edges))
	copy(out, tl.edges)
	return out
}

// Pending returns the response currently eligible as a causal source.
func (tl *Timeline) Pending() (peerid.Key, time.Time, bool) {
	if tl.pending == nil {
		return peerid.Key{}, time.Time{}, false
	}
	return tl.pending.peer, tl.pending.at, true
}

// Cancellations returns the context-canceled frequency timeline
func (tl *Timeline) Cancellations() *Frequency {
	return tl.cancellations
}

// Targets returns the target-selection frequency timeline
func (tl *Timeline) Targets() *Frequency {
	return tl.targets
}

// Unmatched returns the lines that produced no event
func (tl *Timeline) Unmatched() []Unmatched {
	out := make([]Unmatched, len(tl.unmatched))
	copy(out, tl.unmatched)
	return out
}

// Start returns the timestamp of the first timestamped line.
func (tl *Timeline) Start() Mark {
	return tl.start
}

// End returns the timestamp of the last target-selection event.
func (tl *Timeline) End() Mark {
	return tl.end
}

// Summary is a one-line description used in debug logs.
func (tl *Timeline) Summary() string {
	return fmt.Sprintf("peers=%d edges=%d cancellations=%d targets=%d unmatched=%d",
		len(tl.order), len(tl.edges), tl.cancellations.Len(), tl.targets.Len(), len(tl.unmatched))
}
