package engine

import (
	"sync"
	"time"
)

// Scheduler drives the engine's periodic tick. It is an interface so
// tests can step the engine manually.
type Scheduler interface {
	// ScheduleRepeating invokes fn at the given interval until the
	// returned handle is canceled. fn calls never overlap.
	ScheduleRepeating(interval time.Duration, fn func(now time.Time)) ScheduleHandle
}

// ScheduleHandle stops a repeating schedule.
type ScheduleHandle interface {
	// Cancel stops further invocations and waits for any in-flight one
	// to return.
	Cancel()
}

// NewTickerScheduler returns the production scheduler backed by a
// time.Ticker.
func NewTickerScheduler() Scheduler {
	return tickerScheduler{}
}

type tickerScheduler struct{}

func (tickerScheduler) ScheduleRepeating(interval time.Duration, fn func(now time.Time)) ScheduleHandle {
	h := &tickerHandle{stop: make(chan struct{})}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case now := <-ticker.C:
				fn(now)
			}
		}
	}()
	return h
}

type tickerHandle struct {
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
}
