package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler is how the orchestrator runs code on the game loop, either
// immediately or after a delay. Timer callbacks are delivered on the loop,
// never on a timer goroutine.
type Scheduler interface {
	Dispatch(fn func())
	After(d time.Duration, fn func())
}

// Loop serializes all game-state mutation onto a single goroutine. Session
// and Roster are only ever touched from callbacks running here, so handlers
// need no locking and the evaluation guard cannot race.
type Loop struct {
	ch chan func()
}

func NewLoop() *Loop {
	return &Loop{ch: make(chan func(), 256)}
}

// Dispatch enqueues fn for execution on the loop goroutine. It blocks only
// if the loop is severely backed up.
func (l *Loop) Dispatch(fn func()) {
	l.ch <- fn
}

// After schedules fn to run on the loop once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		l.Dispatch(fn)
	})
}

// Run drains the loop until ctx is cancelled. A panicking callback is
// logged and dropped; it never takes the host down.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.ch:
			l.invoke(fn)
		}
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Err(panicError(r)).Msg("loop callback panicked")
		}
	}()
	fn()
}
