package simulation

import (
	"sync"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// ProgressBroker fans run progress out to subscribers. Publishing never
// blocks the engine: slow subscribers miss intermediate updates but always
// observe the latest state, and late subscribers get the last update
// replayed on subscribe.
type ProgressBroker struct {
	mu   sync.Mutex
	subs map[string][]chan domain.ProgressUpdate
	last map[string]domain.ProgressUpdate
}

func NewProgressBroker() *ProgressBroker {
	return &ProgressBroker{
		subs: make(map[string][]chan domain.ProgressUpdate),
		last: make(map[string]domain.ProgressUpdate),
	}
}

// Publish records and fans out one update.
func (b *ProgressBroker) Publish(u domain.ProgressUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last[u.RunID] = u
	for _, ch := range b.subs[u.RunID] {
		select {
		case ch <- u:
		default:
			// Drop rather than block; the next update supersedes this one.
		}
	}
}

// Subscribe returns a channel of updates for a run and a cancel function.
// The most recent update, if any, is delivered immediately.
func (b *ProgressBroker) Subscribe(runID string) (<-chan domain.ProgressUpdate, func()) {
	ch := make(chan domain.ProgressUpdate, 16)

	b.mu.Lock()
	b.subs[runID] = append(b.subs[runID], ch)
	if u, ok := b.last[runID]; ok {
		ch <- u
	}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[runID]
		for i, c := range subs {
			if c == ch {
				b.subs[runID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subs[runID]) == 0 {
			delete(b.subs, runID)
		}
	}
	return ch, cancel
}

// Forget drops the retained last update for a finished run.
func (b *ProgressBroker) Forget(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.last, runID)
}
