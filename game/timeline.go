package game

import (
	"sort"

	"github.com/plus3/shelfmaze/maze"
)

// Timeline holds queued drops ordered by fire time. Drops sharing a fire time
// keep their queue order.
type Timeline struct {
	pending []DropIntent
}

func (t *Timeline) Schedule(d DropIntent) {
	i := sort.Search(len(t.pending), func(i int) bool {
		return t.pending[i].FireAt > d.FireAt
	})
	t.pending = append(t.pending, DropIntent{})
	copy(t.pending[i+1:], t.pending[i:])
	t.pending[i] = d
}

// Due removes and returns every drop whose fire time is at or before now.
func (t *Timeline) Due(now float64) []DropIntent {
	n := sort.Search(len(t.pending), func(i int) bool {
		return t.pending[i].FireAt > now
	})
	if n == 0 {
		return nil
	}
	due := make([]DropIntent, n)
	copy(due, t.pending[:n])
	t.pending = append(t.pending[:0], t.pending[n:]...)
	return due
}

// Reserved reports whether a queued drop already targets tile.
func (t *Timeline) Reserved(tile maze.Tile) bool {
	for _, d := range t.pending {
		if d.Target == tile {
			return true
		}
	}
	return false
}

func (t *Timeline) Len() int {
	return len(t.pending)
}

// Pending returns a copy of the queue.
func (t *Timeline) Pending() []DropIntent {
	return append([]DropIntent(nil), t.pending...)
}

func (t *Timeline) Clear() {
	t.pending = t.pending[:0]
}
