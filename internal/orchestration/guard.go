package orchestration

import (
	"errors"
	"fmt"
	"sync"
)

// Guard collects release functions for acquired resources and runs them in
// reverse acquisition order. It is safe for concurrent use.
type Guard struct {
	mu       sync.Mutex
	entries  []guardEntry
	released bool
}

type guardEntry struct {
	name    string
	release func() error
}

// Track registers release to be run by Release. If the guard has already been
// released, release runs immediately.
func (g *Guard) Track(name string, release func() error) {
	g.mu.Lock()
	if g.released {
		g.mu.Unlock()
		_ = release()
		return
	}
	g.entries = append(g.entries, guardEntry{name: name, release: release})
	g.mu.Unlock()
}

// Release runs every tracked release function once, last tracked first, and
// returns their errors joined. Later calls return nil.
func (g *Guard) Release() error {
	g.mu.Lock()
	if g.released {
		g.mu.Unlock()
		return nil
	}
	g.released = true
	entries := g.entries
	g.entries = nil
	g.mu.Unlock()

	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		if err := entries[i].release(); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", entries[i].name, err))
		}
	}
	return errors.Join(errs...)
}
