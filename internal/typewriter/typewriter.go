// Package typewriter reveals text one character at a time, as a stoppable
// task so a new reveal can cut an unfinished one short.
package typewriter

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the per-character reveal delay.
const DefaultDelay = 10 * time.Millisecond

// Task is a single reveal. Run executes it; Stop halts it between characters
// from any goroutine.
type Task struct {
	text  []rune
	delay time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New prepares a reveal of text at the given per-character delay. A delay of
// zero falls back to DefaultDelay.
func New(text string, delay time.Duration) *Task {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Task{
		text:  []rune(text),
		delay: delay,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Run emits the characters in order, yielding between each one. It returns
// true if the full text was emitted, false if the task was stopped or the
// context canceled first. Run must be called at most once.
func (t *Task) Run(ctx context.Context, emit func(string)) bool {
	defer close(t.done)

	for i, r := range t.text {
		if i > 0 {
			select {
			case <-time.After(t.delay):
			case <-t.stop:
				return false
			case <-ctx.Done():
				return false
			}
		}
		select {
		case <-t.stop:
			return false
		case <-ctx.Done():
			return false
		default:
		}
		emit(string(r))
	}
	return true
}

// Stop halts the reveal before its next character. Safe to call repeatedly
// and after completion.
func (t *Task) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Done is closed once Run has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
