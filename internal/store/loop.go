package store

import (
	"context"
	"sync"
)

// updateLoop serializes every state mutation of a store onto one goroutine
type updateLoop struct {
	ops  chan func()
	done chan struct{}
	once sync.Once
}

func newUpdateLoop() *updateLoop {
	return &updateLoop{
		ops:  make(chan func(), 64),
		done: make(chan struct{}),
	}
}

// run executes queued operations until ctx is cancelled
func (l *updateLoop) run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-l.ops:
			op()
		}
	}
}

// post schedules fn without waiting. Safe to call from any goroutine
// except that it must not be used to wait on the loop from inside it.
func (l *updateLoop) post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.ops <- fn:
		return true
	case <-l.done:
		return false
	}
}

// do runs fn on the loop and waits for it. ctx only bounds queueing: once
// fn is queued it will run, so do waits for it regardless of ctx.
// Never call from inside the loop.
func (l *updateLoop) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.postCtx(ctx, func() {
		fn()
		close(finished)
	}) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// the loop may have run fn just before exiting
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

func (l *updateLoop) postCtx(ctx context.Context, fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.ops <- fn:
		return true
	case <-l.done:
		return false
	case <-ctx.Done():
		return false
	}
}
