// Package session tracks how many browser pages are holding the server open.
package session

import (
	"context"
	"sync"
)

// Gate counts open keep-alive sessions. There is no per-session identity: every stream
// increments the same counter on entry and decrements it on exit.
//
// Waiters are woken on every transition of the count, so AwaitActive and AwaitIdle do not
// need to poll.
type Gate struct {
	count   int64
	changed chan struct{}
	lock    sync.Mutex
}

// NewGate creates a Gate with a count of zero.
func NewGate() *Gate {
	return &Gate{changed: make(chan struct{})}
}

// Increment records that a session has opened and returns the new count.
func (g *Gate) Increment() int64 {
	return g.add(1)
}

// Decrement records that a session has closed and returns the new count.
func (g *Gate) Decrement() int64 {
	return g.add(-1)
}

// Snapshot returns the current count.
func (g *Gate) Snapshot() int64 {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.count
}

func (g *Gate) add(delta int64) int64 {
	g.lock.Lock()
	g.count += delta
	n := g.count
	close(g.changed)
	g.changed = make(chan struct{})
	g.lock.Unlock()
	return n
}

// AwaitActive blocks until at least one session is open, or until the context is done.
func (g *Gate) AwaitActive(ctx context.Context) error {
	return g.await(ctx, func(n int64) bool { return n > 0 })
}

// AwaitIdle blocks until no sessions are open, or until the context is done.
func (g *Gate) AwaitIdle(ctx context.Context) error {
	return g.await(ctx, func(n int64) bool { return n <= 0 })
}

func (g *Gate) await(ctx context.Context, done func(int64) bool) error {
	for {
		g.lock.Lock()
		n, changed := g.count, g.changed
		g.lock.Unlock()
		if done(n) {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
