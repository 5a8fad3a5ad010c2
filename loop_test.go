package main

import (
	"context"
	"testing"
	"time"
)

func TestLoopSerializesDispatches(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	done := make(chan []int, 1)
	var order []int
	for i := 0; i < 10; i++ {
		n := i
		loop.Dispatch(func() {
			order = append(order, n)
			if n == 9 {
				done <- order
			}
		})
	}

	select {
	case got := <-done:
		for i, n := range got {
			if n != i {
				t.Fatalf("execution order = %v", got)
			}
		}
	case <-time.After(time.Second):
		t.Fatal("loop did not drain dispatches")
	}
}

func TestLoopAfterRunsOnLoop(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	fired := make(chan struct{})
	loop.After(10*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("After callback never fired")
	}
}

func TestLoopSurvivesPanickingCallback(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	loop.Dispatch(func() { panic("boom") })

	survived := make(chan struct{})
	loop.Dispatch(func() { close(survived) })

	select {
	case <-survived:
	case <-time.After(time.Second):
		t.Fatal("loop died after a panicking callback")
	}
}

func TestLoopStopsOnCancel(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}
