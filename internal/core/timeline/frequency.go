package timeline

import "time"

// Frequency counts events per exact timestamp, remembering first-seen order.
type Frequency struct {
	ticks []Tick
	index map[time.Time]int
}

func newFrequency() *Frequency {
	return &Frequency{index: make(map[time.Time]int)}
}

// Add increments the count at t
func (f *Frequency) Add(t time.Time) {
	if i, ok := f.index[t]; ok {
		f.ticks[i].Count++
		return
	}
	f.index[t] = len(f.ticks)
	f.ticks = append(f.ticks, Tick{At: t, Count: 1})
}

// Ticks returns a copy of the counts in first-seen order.
func (f *Frequency) Ticks() []Tick {
	out := make([]Tick, len(f.ticks))
	copy(out, f.ticks)
	return out
}

// Len returns the number of distinct timestamps
func (f *Frequency) Len() int {
	return len(f.ticks)
}
