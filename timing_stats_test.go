package eegsim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimingStats(t *testing.T) {
	ts := NewTimingStats(10)
	s := ts.Summary()
	assert.Zero(t, s.Ticks)
	assert.Zero(t, s.MeanLateness)

	ts.Add(0)
	ts.Add(-time.Millisecond) // early counts as on time
	ts.Add(2 * time.Millisecond)
	ts.Add(4 * time.Millisecond)
	s = ts.Summary()
	assert.Equal(t, 4, s.Ticks)
	assert.Equal(t, 2, s.Overruns)
	assert.Equal(t, 4*time.Millisecond, s.WorstLate)
	assert.InDelta(t, float64(1500*time.Microsecond), float64(s.MeanLateness), 1000)
	assert.Greater(t, s.StdLateness, time.Duration(0))

	ts.NewWindow()
	assert.Zero(t, ts.Summary().Ticks)
	assert.Equal(t, uint64(4), ts.Total())
	ts.Add(time.Millisecond)
	assert.InDelta(t, float64(time.Millisecond), float64(ts.Summary().MeanLateness), 10)
	ts.Reset()
	assert.Zero(t, ts.Total())
}
