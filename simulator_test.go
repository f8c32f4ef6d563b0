package eegsim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePublisher records everything published to it.
type fakePublisher struct {
	descriptor StreamDescriptor
	ticks      []uint64
	samples    []SampleVector
	statuses   []RunStatus
	closed     int
	failAt     int         // fail the publish with this 1-based count; 0 never fails
	onPublish  func(n int) // called after each successful publish
}

func (fp *fakePublisher) Publish(tick uint64, sample SampleVector) error {
	if fp.closed > 0 {
		return errors.New("publish after close")
	}
	n := len(fp.samples) + 1
	if n == fp.failAt {
		return errors.New("transport went away")
	}
	fp.ticks = append(fp.ticks, tick)
	fp.samples = append(fp.samples, sample)
	if fp.onPublish != nil {
		fp.onPublish(n)
	}
	return nil
}

func (fp *fakePublisher) Close() error {
	fp.closed++
	return nil
}

func (fp *fakePublisher) ReportStatus(status RunStatus) {
	fp.statuses = append(fp.statuses, status)
}

func (fp *fakePublisher) opener() PublisherOpener {
	return func(d StreamDescriptor) (Publisher, error) {
		fp.descriptor = d
		return fp, nil
	}
}

func newTestConfig(t *testing.T, nchan int, rate float64) StreamConfig {
	t.Helper()
	cfg, err := NewStreamConfig("test", nchan, rate)
	require.NoError(t, err)
	return cfg
}

func TestRunOneSecond(t *testing.T) {
	if testing.Short() {
		t.Skip("runs for 1 second")
	}
	fp := new(fakePublisher)
	sim := NewSimulator(newTestConfig(t, 1, 100), fp.opener())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result, err := sim.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Interrupted, result.Status)
	assert.Equal(t, Stopped, sim.State())
	n := len(fp.samples)
	assert.GreaterOrEqual(t, n, 99)
	assert.LessOrEqual(t, n, 101)
	assert.Equal(t, uint64(n), result.Ticks)
	for i, s := range fp.samples {
		assert.Len(t, s, 1)
		assert.Equal(t, uint64(i), fp.ticks[i], "ticks are published in order with no gaps")
	}
	assert.Equal(t, 1, fp.closed)
	assert.Equal(t, "Markers", fp.descriptor.Type)
	assert.Equal(t, 1, fp.descriptor.ChannelCount)
	assert.NotEmpty(t, fp.statuses, "status should be reported about once per second")
}

func TestRunDurationLimit(t *testing.T) {
	fp := new(fakePublisher)
	sim := NewSimulator(newTestConfig(t, 4, 1000), fp.opener())
	sim.Duration = 200 * time.Millisecond

	result, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Completed, result.Status)
	assert.Equal(t, 200, len(fp.samples))
	assert.InDelta(t, float64(200*time.Millisecond), float64(result.Elapsed), float64(50*time.Millisecond))
	assert.Equal(t, 1, fp.closed)
}

func TestRunTickLimit(t *testing.T) {
	fp := new(fakePublisher)
	sim := NewSimulator(newTestConfig(t, 3, 2000), fp.opener())
	sim.MaxTicks = 37
	result, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Completed, result.Status)
	assert.Equal(t, uint64(37), result.Ticks)
	assert.Len(t, fp.samples, 37)
}

// Slow publishes delay only their own tick; the run length in wall-clock
// time must stay close to ticks/rate.
// silentPublisher publishes but has no ReportStatus method.
type silentPublisher struct {
	published int
}

func (sp *silentPublisher) Publish(uint64, SampleVector) error {
	sp.published++
	return nil
}

func (sp *silentPublisher) Close() error { return nil }

// Without a StatusReporter the lateness window must still be reset once per
// reporting period, or it grows for as long as the stream runs.
func TestTimingWindowResetsWithoutReporter(t *testing.T) {
	if testing.Short() {
		t.Skip("runs for 1.5 seconds")
	}
	sp := new(silentPublisher)
	sim := NewSimulator(newTestConfig(t, 1, 1000), func(StreamDescriptor) (Publisher, error) {
		return sp, nil
	})
	sim.MaxTicks = 1500
	result, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Completed, result.Status)
	assert.Equal(t, 1500, sp.published)
	// The window restarted after tick 999, so it holds the waits after ticks 999..1499.
	assert.Equal(t, 501, result.Timing.Ticks)
}

func TestRunSlowTicksDoNotAccumulate(t *testing.T) {
	fp := new(fakePublisher)
	fp.onPublish = func(n int) {
		if n%50 == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
	sim := NewSimulator(newTestConfig(t, 2, 500), fp.opener())
	sim.MaxTicks = 250 // 0.5 s nominal, 5 slow ticks of 10 ms each
	result, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, fp.samples, 250)
	assert.GreaterOrEqual(t, result.Elapsed, 490*time.Millisecond)
	assert.Less(t, result.Elapsed, 540*time.Millisecond)
}

func TestStopBetweenTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	const stopAfter = 25
	fp := new(fakePublisher)
	fp.onPublish = func(n int) {
		if n == stopAfter {
			cancel()
		}
	}
	sim := NewSimulator(newTestConfig(t, 8, 5000), fp.opener())
	result, err := sim.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Interrupted, result.Status)
	assert.Len(t, fp.samples, stopAfter, "no tick may start after the stop request")
	assert.Equal(t, uint64(stopAfter), result.Ticks)
	for _, s := range fp.samples {
		assert.Len(t, s, 8)
	}
	assert.Equal(t, 1, fp.closed)
}

func TestStopInterruptsLongWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fp := new(fakePublisher)
	sim := NewSimulator(newTestConfig(t, 1, 0.1), fp.opener()) // 10 s per tick
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	begin := time.Now()
	result, err := sim.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Interrupted, result.Status)
	assert.Less(t, time.Since(begin), time.Second)
	assert.Len(t, fp.samples, 1)
}

func TestZeroChannels(t *testing.T) {
	_, err := NewStreamConfig("test", 0, 100)
	require.ErrorIs(t, err, ErrConfiguration)

	// Even if an invalid config reaches Run, nothing is opened or published.
	opened := false
	sim := NewSimulator(StreamConfig{name: "test", nchan: 0, sampleRate: 100, sourceID: "x"},
		func(StreamDescriptor) (Publisher, error) {
			opened = true
			return new(fakePublisher), nil
		})
	result, err := sim.Run(context.Background())
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, Failed, result.Status)
	assert.Zero(t, result.Ticks)
	assert.False(t, opened)
	assert.Equal(t, Stopped, sim.State())
}

func TestPublisherInitFails(t *testing.T) {
	sim := NewSimulator(newTestConfig(t, 4, 100), func(d StreamDescriptor) (Publisher, error) {
		return nil, errors.New("stream name already registered")
	})
	result, err := sim.Run(context.Background())
	assert.ErrorIs(t, err, ErrPublisherInit)
	assert.Equal(t, Failed, result.Status)
	assert.Zero(t, result.Ticks)
	assert.Equal(t, Stopped, sim.State())

	sim = NewSimulator(newTestConfig(t, 4, 100), nil)
	_, err = sim.Run(context.Background())
	assert.ErrorIs(t, err, ErrPublisherInit)
}

func TestPublishErrorStopsLoop(t *testing.T) {
	fp := &fakePublisher{failAt: 6}
	sim := NewSimulator(newTestConfig(t, 2, 1000), fp.opener())
	result, err := sim.Run(context.Background())
	assert.ErrorIs(t, err, ErrPublish)
	assert.Equal(t, Failed, result.Status)
	assert.Len(t, fp.samples, 5)
	assert.Equal(t, uint64(5), result.Ticks)
	assert.Equal(t, 1, fp.closed, "publisher must be released after a publish error")
}

func TestWrongLengthPanics(t *testing.T) {
	fp := new(fakePublisher)
	sim := NewSimulator(newTestConfig(t, 4, 1000), fp.opener())
	sim.SetGenerator(NewSeededSignalGenerator(3, 1000, 1, 1))
	assert.Panics(t, func() { sim.Run(context.Background()) })
	assert.Equal(t, 1, fp.closed, "publisher must be released even on a panic")
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "Starting", Starting.String())
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "Stopped", Stopped.String())
	assert.Equal(t, "interrupted", Interrupted.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "failed", Failed.String())
}
