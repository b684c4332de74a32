package dashboard

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded reports that a newer spending render started before this
// one finished, so its result must be discarded.
var ErrSuperseded = errors.New("render superseded by a newer request")

// renderGuard serializes spending renders per key with a
// latest-to-complete-wins policy: beginning a render cancels the previous
// in-flight one, and only the newest generation may publish its result.
type renderGuard struct {
	mu      sync.Mutex
	entries map[string]*guardEntry
}

type guardEntry struct {
	generation uint64
	cancel     context.CancelFunc
}

func newRenderGuard() *renderGuard {
	return &renderGuard{entries: make(map[string]*guardEntry)}
}

// begin registers a new render for key, cancelling any predecessor still
// in flight. The returned finish func reports whether this render is
// still the newest; call it exactly once when the render completes.
func (g *renderGuard) begin(ctx context.Context, key string) (context.Context, func() bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.entries[key]
	if !ok {
		entry = &guardEntry{}
		g.entries[key] = entry
	}
	if entry.cancel != nil {
		entry.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	entry.generation++
	entry.cancel = cancel
	gen := entry.generation

	finish := func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		cancel()
		current := g.entries[key]
		if current == nil || current.generation != gen {
			return false
		}
		current.cancel = nil
		return true
	}
	return ctx, finish
}
