package eegsim

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// TimingStats accumulates how late each tick started relative to its deadline.
// Values are kept for one reporting window at a time; Summary then Reset.
type TimingStats struct {
	lateness  []float64 // seconds, one per tick in the current window
	overruns  int       // ticks in this window whose deadline had already passed
	total     uint64    // ticks since the last full Reset
	worstLate time.Duration
}

// TimingSummary is the JSON-friendly report of one TimingStats window.
type TimingSummary struct {
	Ticks        int
	Overruns     int
	MeanLateness time.Duration
	StdLateness  time.Duration
	WorstLate    time.Duration
}

// NewTimingStats creates a TimingStats with room for capacity ticks per window.
func NewTimingStats(capacity int) *TimingStats {
	return &TimingStats{lateness: make([]float64, 0, capacity)}
}

// Add records one tick's lateness. Negative lateness (early wake-up) counts as zero.
func (ts *TimingStats) Add(late time.Duration) {
	if late < 0 {
		late = 0
	}
	if late > 0 {
		ts.overruns++
	}
	if late > ts.worstLate {
		ts.worstLate = late
	}
	ts.lateness = append(ts.lateness, late.Seconds())
	ts.total++
}

// Total returns the number of ticks recorded since the last full Reset.
func (ts *TimingStats) Total() uint64 {
	return ts.total
}

// Summary computes the statistics of the current window.
func (ts *TimingStats) Summary() TimingSummary {
	s := TimingSummary{
		Ticks:     len(ts.lateness),
		Overruns:  ts.overruns,
		WorstLate: ts.worstLate,
	}
	switch len(ts.lateness) {
	case 0:
	case 1:
		s.MeanLateness = seconds(ts.lateness[0])
	default:
		mean, std := stat.MeanStdDev(ts.lateness, nil)
		s.MeanLateness = seconds(mean)
		s.StdLateness = seconds(std)
	}
	return s
}

// NewWindow starts a new reporting window, keeping the running total.
func (ts *TimingStats) NewWindow() {
	ts.lateness = ts.lateness[:0]
	ts.overruns = 0
	ts.worstLate = 0
}

// Reset clears everything, including the running total.
func (ts *TimingStats) Reset() {
	ts.NewWindow()
	ts.total = 0
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
