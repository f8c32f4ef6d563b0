package eegsim

import (
	"context"
	"math"
	"time"
)

// maxWindowCapacity bounds the lateness storage preallocated by NewPacer.
const maxWindowCapacity = 1 << 16

// Pacer enforces the nominal tick rate with fixed deadlines. The deadline for
// tick n is start + n/rate, computed from the tick count, so a slow tick delays
// only itself and never shifts the deadlines after it.
type Pacer struct {
	sampleRate float64       // samples per second
	interval   time.Duration // nominal time per tick, for reporting only
	start      time.Time
	tick       uint64
	next       time.Time // deadline of tick number `tick`
	now        func() time.Time
	stats      *TimingStats
}

// NewPacer creates a Pacer for the given rate. Call Start before Wait.
func NewPacer(rate float64) *Pacer {
	p := &Pacer{
		sampleRate: rate,
		interval:   saturatedDuration(float64(time.Second) / rate),
		now:        time.Now,
		stats:      NewTimingStats(windowCapacity(rate)),
	}
	return p
}

// windowCapacity is the preallocated room for one second of ticks, capped.
func windowCapacity(rate float64) int {
	if !(rate > 0) || rate >= maxWindowCapacity {
		return maxWindowCapacity
	}
	return int(rate) + 1
}

// Start initializes the tick clock. Tick 0 is due immediately.
func (p *Pacer) Start() {
	p.start = p.now()
	p.tick = 0
	p.next = p.start
	p.stats.Reset()
}

// Interval is the nominal time between ticks.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Tick returns the index of the tick currently due.
func (p *Pacer) Tick() uint64 {
	return p.tick
}

// Deadline returns the time at which the current tick is due.
func (p *Pacer) Deadline() time.Time {
	return p.next
}

// Elapsed is the wall-clock time since Start.
func (p *Pacer) Elapsed() time.Duration {
	return p.now().Sub(p.start)
}

// Stats returns the lateness statistics accumulated since Start or the last window reset.
func (p *Pacer) Stats() *TimingStats {
	return p.stats
}

// deadline computes the due time of tick n. Offsets beyond the Duration range
// saturate, so a deadline never wraps into the past.
func (p *Pacer) deadline(n uint64) time.Time {
	return p.start.Add(saturatedDuration(float64(n) * float64(time.Second) / p.sampleRate))
}

// saturatedDuration converts ns nanoseconds to a Duration, clamping at the
// largest Duration instead of overflowing.
func saturatedDuration(ns float64) time.Duration {
	if !(ns < math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// waitDuration is how long to sleep from now until deadline; never negative.
func waitDuration(now, deadline time.Time) time.Duration {
	if d := deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Wait advances the tick clock by one interval and blocks until the new deadline.
// If the deadline has already passed, it returns at once. If ctx is done before
// the deadline, Wait returns ctx.Err() without waiting out the remaining time.
func (p *Pacer) Wait(ctx context.Context) error {
	p.tick++
	p.next = p.deadline(p.tick)

	now := p.now()
	waittime := waitDuration(now, p.next)
	if waittime == 0 {
		p.stats.Add(now.Sub(p.next))
		return nil
	}

	timer := time.NewTimer(waittime)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		p.stats.Add(p.now().Sub(p.next))
	}
	return nil
}
