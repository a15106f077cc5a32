package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultRenewPeriod is how often an authenticated session checks its token.
const DefaultRenewPeriod = 60 * time.Second

// Ticker is the part of *time.Ticker the scheduler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// NewTimeTicker is the TickerFunc backed by the runtime timer.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Scheduler runs a tick function periodically on its own goroutine.
type Scheduler struct {
	period    time.Duration
	newTicker TickerFunc
	logger    *logrus.Logger
}

func NewScheduler(period time.Duration, newTicker TickerFunc, logger *logrus.Logger) *Scheduler {
	if period <= 0 {
		period = DefaultRenewPeriod
	}
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &Scheduler{
		period:    period,
		newTicker: newTicker,
		logger:    logger,
	}
}

func (s *Scheduler) Period() time.Duration {
	return s.period
}

// Handle owns one armed schedule. The zero value is not usable; get one from Arm.
type Handle struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Cancel stops the schedule. No tick starts after Cancel returns; a tick
// already running is allowed to finish. Cancel never blocks and may be called
// from inside the tick function.
func (h *Handle) Cancel() {
	h.once.Do(func() {
		close(h.stop)
	})
}

// Done is closed once the schedule goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Arm starts calling tick every period until the handle is cancelled or ctx
// ends. Ticks run one at a time: the next tick is not read until tick returns.
func (s *Scheduler) Arm(ctx context.Context, tick func(context.Context)) *Handle {
	h := &Handle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	ticker := s.newTicker(s.period)

	go func() {
		defer close(h.done)
		defer ticker.Stop()

		for {
			select {
			case <-h.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C():
				// stop and a tick can be ready at once; stop wins.
				select {
				case <-h.stop:
					return
				default:
				}
				tick(ctx)
			}
		}
	}()

	s.logger.WithField("period", s.period.String()).Debug("Renewal scheduler armed")
	return h
}
