package ctxengine

import (
	"slices"

	"github.com/flemzord/sovereign/internal/provider"
)

// Window is the sliding-window eviction policy. It keeps the system turn
// at index 0 plus at most MaxPairs exchange pairs, dropping the oldest
// first.
type Window struct {
	maxPairs int
}

// NewWindow returns a window retaining maxPairs exchange pairs.
func NewWindow(maxPairs int) Window {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}
	return Window{maxPairs: maxPairs}
}

// MaxPairs returns the number of retained exchange pairs.
func (w Window) MaxPairs() int {
	return w.maxPairs
}

// Limit is the maximum history length: every pair plus the system turn.
func (w Window) Limit() int {
	return 2*w.maxPairs + 1
}

// Enforce removes the turn at index 1 twice while history exceeds Limit,
// i.e. it evicts the oldest surviving pair and never touches index 0.
// history is modified in place; the trimmed slice and the number of
// evicted turns are returned.
func (w Window) Enforce(history []provider.LLMMessage) ([]provider.LLMMessage, int) {
	evicted := 0
	for len(history) > w.Limit() {
		n := min(2, len(history)-1)
		history = slices.Delete(history, 1, 1+n)
		evicted += n
	}
	return history, evicted
}
