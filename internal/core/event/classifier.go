package event

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/penwyp/go-kadlog/internal/core/peerid"
)

// TimeLayout is the time-of-day format at the start of lookup log lines.
const TimeLayout = "15:04:05.000"

const timePattern = `(\d\d:\d\d:\d\d\.\d\d\d)`

var (
	// ErrNoMatch is returned when a line matches none of the known events.
	ErrNoMatch = errors.New("no event pattern matched")
	// ErrInvalidTimestamp is returned when a leading timestamp is out of range.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// Kind identifies a recognized lookup event
type Kind int

const (
	Querying Kind = iota
	Dialing
	ResponseReceived
	DialFailed
	ContextCanceled
	TargetObserved
)

func (k Kind) String() string {
	switch k {
	case Querying:
		return "querying"
	case Dialing:
		return "dialing"
	case ResponseReceived:
		return "says_use"
	case DialFailed:
		return "dial_error"
	case ContextCanceled:
		return "context_canceled"
	case TargetObserved:
		return "target_found"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a classified log line
type Event struct {
	Kind Kind
	At   time.Time
	Peer peerid.Key // zero for ContextCanceled
}

type rule struct {
	kind    Kind
	pattern *regexp.Regexp
	hasPeer bool
}

// Classifier matches raw log lines against an ordered list of event patterns.
type Classifier struct {
	timeRe *regexp.Regexp
	rules  []rule
}

// NewClassifier creates a classifier with the lookup log patterns.
//
// Order matters: the first matching rule wins, and TargetObserved
// (timestamp followed by any identifier) also matches several of the
// lines above it in shape, so it must stay last.
func NewClassifier() *Classifier {
	id := peerid.Pattern
	return &Classifier{
		timeRe: regexp.MustCompile(`^` + timePattern),
		rules: []rule{
			{Querying, regexp.MustCompile(`^` + timePattern + `: \* querying ` + id), true},
			{Dialing, regexp.MustCompile(`^` + timePattern + `: dialing peer: ` + id), true},
			{ResponseReceived, regexp.MustCompile(`^` + timePattern + `: \* ` + id + ` says use(?: ` + id + `)*`), true},
			{DialFailed, regexp.MustCompile(`^` + timePattern + `: error: failed to dial ` + id + `: all dials failed`), true},
			{ContextCanceled, regexp.MustCompile(`^` + timePattern + `: error: context canceled$`), false},
			{TargetObserved, regexp.MustCompile(`^` + timePattern + `: ` + id), true},
		},
	}
}

// Kinds returns the rule kinds in evaluation order.
func (c *Classifier) Kinds() []Kind {
	kinds := make([]Kind, len(c.rules))
	for i, r := range c.rules {
		kinds[i] = r.kind
	}
	return kinds
}

// Timestamp parses the leading timestamp of a line, if it has one.
func (c *Classifier) Timestamp(line string) (time.Time, bool) {
	m := c.timeRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(TimeLayout, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Classify returns the event described by line.
//
// ErrNoMatch is returned if no rule matches. If a rule matches but its
// identifier cannot be decoded, the line is not retried against later rules
// and an error wrapping peerid.ErrInvalidIdentifier is returned.
func (c *Classifier) Classify(line string) (Event, error) {
	for _, r := range c.rules {
		m := r.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		at, err := time.Parse(TimeLayout, m[1])
		if err != nil {
			return Event{}, fmt.Errorf("%w %q: %v", ErrInvalidTimestamp, m[1], err)
		}

		ev := Event{Kind: r.kind, At: at}
		if r.hasPeer {
			key, err := peerid.Canonicalize(m[2])
			if err != nil {
				return Event{}, fmt.Errorf("%s line: %w", r.kind, err)
			}
			ev.Peer = key
		}
		return ev, nil
	}
	return Event{}, ErrNoMatch
}
