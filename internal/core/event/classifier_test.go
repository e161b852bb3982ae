package event

import (
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-kadlog/internal/core/peerid"
	"github.com/penwyp/go-kadlog/internal/testing/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T, id string) peerid.Key {
	t.Helper()
	key, err := peerid.Canonicalize(id)
	require.NoError(t, err)
	return key
}

func TestClassifierRuleOrder(t *testing.T) {
	c := NewClassifier()
	kinds := c.Kinds()

	require.Len(t, kinds, 6)
	assert.Equal(t, []Kind{Querying, Dialing, ResponseReceived, DialFailed, ContextCanceled, TargetObserved}, kinds)
	// the catch-all must be evaluated last
	assert.Equal(t, TargetObserved, kinds[len(kinds)-1])
}

func TestClassify(t *testing.T) {
	a := fixtures.QmID("a")
	b := fixtures.KeyID("b")
	c := NewClassifier()

	tests := []struct {
		name string
		line string
		kind Kind
		peer string
	}{
		{"querying", "00:00:01.000: * querying " + a, Querying, a},
		{"dialing", "00:00:01.500: dialing peer: " + b, Dialing, b},
		{"says use without peers", "00:00:02.000: * " + a + " says use", ResponseReceived, a},
		{"says use with peers", "00:00:02.000: * " + b + " says use " + a + " " + b, ResponseReceived, b},
		{"dial failed", "00:00:03.000: error: failed to dial " + a + ": all dials failed", DialFailed, a},
		{"context canceled", "00:00:04.000: error: context canceled", ContextCanceled, ""},
		{"target", "00:00:05.000: " + b, TargetObserved, b},
		{"target with trailing text", "00:00:05.000: " + a + " distance 17", TargetObserved, a},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := c.Classify(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ev.Kind)
			if tt.peer != "" {
				assert.Equal(t, mustKey(t, tt.peer), ev.Peer)
			} else {
				assert.Equal(t, peerid.Key{}, ev.Peer)
			}
		})
	}
}

func TestClassifyTimestamp(t *testing.T) {
	c := NewClassifier()
	ev, err := c.Classify("12:34:56.789: error: context canceled")
	require.NoError(t, err)

	assert.Equal(t, 12, ev.At.Hour())
	assert.Equal(t, 34, ev.At.Minute())
	assert.Equal(t, 56, ev.At.Second())
	assert.Equal(t, 789*time.Millisecond, time.Duration(ev.At.Nanosecond()))
}

func TestClassifyNoMatch(t *testing.T) {
	c := NewClassifier()
	lines := []string{
		"garbled output with no timestamp",
		"",
		"00:00:01.000: something else happened",
		"00:00:01.000: error: context canceled while dialing",
		"* querying " + fixtures.QmID("x"),
	}

	for _, line := range lines {
		_, err := c.Classify(line)
		assert.ErrorIs(t, err, ErrNoMatch, line)
	}
}

func TestClassifyInvalidIdentifierDoesNotFallThrough(t *testing.T) {
	c := NewClassifier()
	// shaped like an identifier, but '0' is outside the base-58 alphabet
	bad := "Qm" + strings.Repeat("0", 44)

	_, err := c.Classify("00:00:01.000: dialing peer: " + bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, peerid.ErrInvalidIdentifier)
	assert.NotErrorIs(t, err, ErrNoMatch)
}

func TestClassifyInvalidTimestamp(t *testing.T) {
	c := NewClassifier()
	_, err := c.Classify("99:99:99.999: error: context canceled")
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestTimestamp(t *testing.T) {
	c := NewClassifier()

	ts, ok := c.Timestamp("00:00:07.250: anything")
	require.True(t, ok)
	assert.Equal(t, 7, ts.Second())

	_, ok = c.Timestamp("no time here")
	assert.False(t, ok)

	_, ok = c.Timestamp("  00:00:07.250 leading space")
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "querying", Querying.String())
	assert.Equal(t, "target_found", TargetObserved.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
