package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerDefaults(t *testing.T) {
	s := NewScheduler(0, nil, testLogger())
	if s.Period() != DefaultRenewPeriod {
		t.Errorf("Period() = %s, want %s", s.Period(), DefaultRenewPeriod)
	}
}

func TestSchedulerTicksUntilCancelled(t *testing.T) {
	tickers := &fakeTickers{}
	s := NewScheduler(time.Minute, tickers.New, testLogger())

	var ticks atomic.Int32
	h := s.Arm(context.Background(), func(context.Context) { ticks.Add(1) })
	ticker := tickers.last(t)

	ticker.fire(t)
	ticker.fire(t)
	eventually(t, func() bool { return ticks.Load() == 2 }, "two ticks should run")

	h.Cancel()
	h.Cancel()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("schedule goroutine did not exit after Cancel")
	}
	if !ticker.isStopped() {
		t.Error("ticker not stopped after Cancel")
	}

	select {
	case ticker.ch <- testNow:
		t.Fatal("tick consumed after Cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSchedulerTicksDoNotOverlap(t *testing.T) {
	tickers := &fakeTickers{}
	s := NewScheduler(time.Minute, tickers.New, testLogger())

	var running, maxRunning, total atomic.Int32
	release := make(chan struct{})
	h := s.Arm(context.Background(), func(context.Context) {
		n := running.Add(1)
		if n > maxRunning.Load() {
			maxRunning.Store(n)
		}
		<-release
		running.Add(-1)
		total.Add(1)
	})
	defer h.Cancel()
	ticker := tickers.last(t)

	ticker.fire(t)
	second := make(chan struct{})
	go func() {
		ticker.ch <- testNow
		close(second)
	}()

	select {
	case <-second:
		t.Fatal("second tick was accepted while the first was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-second
	eventually(t, func() bool { return total.Load() == 2 }, "both ticks should complete")
	if maxRunning.Load() != 1 {
		t.Errorf("max concurrent ticks = %d, want 1", maxRunning.Load())
	}
}

func TestSchedulerCancelFromTick(t *testing.T) {
	tickers := &fakeTickers{}
	s := NewScheduler(time.Minute, tickers.New, testLogger())

	var h *Handle
	armed := make(chan struct{})
	h = s.Arm(context.Background(), func(context.Context) {
		<-armed
		h.Cancel()
	})
	close(armed)

	tickers.last(t).fire(t)
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("cancelling from inside a tick deadlocked")
	}
}

func TestSchedulerStopsWithContext(t *testing.T) {
	tickers := &fakeTickers{}
	s := NewScheduler(time.Minute, tickers.New, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	h := s.Arm(ctx, func(context.Context) {})
	cancel()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("schedule goroutine did not exit after context cancel")
	}
}

func TestTimeTicker(t *testing.T) {
	ticker := NewTimeTicker(time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
	case <-time.After(2 * time.Second):
		t.Fatal("runtime ticker never fired")
	}
}
