package timeline

import (
	"time"

	"github.com/penwyp/go-kadlog/internal/core/peerid"
)

// Mark is an optional point in time. The zero Mark means the event never occurred.
type Mark struct {
	At  time.Time
	Set bool
}

// MarkAt returns a set Mark
func MarkAt(t time.Time) Mark {
	return Mark{At: t, Set: true}
}

// PeerRecord holds the lifecycle of a single peer during the lookup.
// Every field is last-write-wins.
type PeerRecord struct {
	Key        peerid.Key
	DialStart  Mark
	DialEnd    Mark
	DialError  Mark
	QueryStart Mark
	QueryEnd   Mark
	Target     bool
}

// Edge records that a response from From at FromAt is believed to have
// triggered the dial to To at ToAt.
type Edge struct {
	From   peerid.Key
	FromAt time.Time
	To     peerid.Key
	ToAt   time.Time
}

// Tick is the number of events observed at one exact timestamp.
type Tick struct {
	At    time.Time
	Count int
}

// Unmatched is a diagnostic record for a line no pattern accepted.
type Unmatched struct {
	Line   int
	At     Mark // timestamp in effect when the line was read
	Text   string
	Reason string
}

type response struct {
	peer peerid.Key
	at   time.Time
}
