// Package debounce coalesces bursts of input into a single fetch. The
// console uses it to keep per-keystroke search traffic away from the
// backend: only the value observed after a quiet period is queried.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to a caller whose input was replaced by newer
// input before the quiet period elapsed. The newer caller receives the
// fetch result.
var ErrSuperseded = errors.New("superseded by newer input")

// Group debounces fetches independently per key (e.g. one key per session).
type Group[T any] struct {
	quiet time.Duration
	fetch func(context.Context, string) (T, error)

	mu      sync.Mutex
	pending map[string]*pendingFetch[T]
}

type fetchResult[T any] struct {
	value T
	err   error
}

type pendingFetch[T any] struct {
	timer  *time.Timer
	value  string
	ctx    context.Context
	waiter chan fetchResult[T]
}

// NewGroup constructs a Group with the given quiet period and fetch
// function. The fetch runs at most once per burst, with the latest value.
func NewGroup[T any](quiet time.Duration, fetch func(context.Context, string) (T, error)) *Group[T] {
	if quiet <= 0 {
		quiet = 500 * time.Millisecond
	}
	return &Group[T]{
		quiet:   quiet,
		fetch:   fetch,
		pending: make(map[string]*pendingFetch[T]),
	}
}

// Do registers value under key and blocks until either the debounced fetch
// completes (for the last caller of the burst) or a newer call supersedes
// this one.
func (g *Group[T]) Do(ctx context.Context, key, value string) (T, error) {
	waiter := make(chan fetchResult[T], 1)

	g.mu.Lock()
	p, ok := g.pending[key]
	if !ok {
		p = &pendingFetch[T]{}
		g.pending[key] = p
		p.timer = time.AfterFunc(g.quiet, func() { g.fire(key) })
	} else {
		// Release the previous caller; its input is stale now.
		p.waiter <- fetchResult[T]{err: ErrSuperseded}
		p.timer.Reset(g.quiet)
	}
	p.value = value
	p.ctx = ctx
	p.waiter = waiter
	g.mu.Unlock()

	select {
	case res := <-waiter:
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (g *Group[T]) fire(key string) {
	g.mu.Lock()
	p, ok := g.pending[key]
	if !ok {
		g.mu.Unlock()
		return
	}
	delete(g.pending, key)
	value, ctx, waiter := p.value, p.ctx, p.waiter
	g.mu.Unlock()

	result, err := g.fetch(ctx, value)
	waiter <- fetchResult[T]{value: result, err: err}
}
