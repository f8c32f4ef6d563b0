package eegsim

import (
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
)

// Defaults for the command-line configuration values.
const (
	DefaultStreamName   = "EEGstream"
	DefaultChannels     = 32
	DefaultSamplingRate = 1024.0
)

// The sample period must be representable as a time.Duration: at least 1 ns,
// and short enough that a few ticks fit within the ~292 year Duration range.
const (
	MaxSamplingRate = 1e9
	MinSamplingRate = 1e-6
)

// StreamConfig holds the immutable facts about one simulated stream.
// Build it with NewStreamConfig; the zero value is not valid.
type StreamConfig struct {
	name       string
	nchan      int
	sampleRate float64 // samples per second
	sourceID   string
}

// NewStreamConfig validates its arguments and returns a StreamConfig carrying a
// fresh source identifier. Errors wrap ErrConfiguration.
func NewStreamConfig(name string, nchan int, rate float64) (StreamConfig, error) {
	cfg := StreamConfig{
		name:       name,
		nchan:      nchan,
		sampleRate: rate,
		sourceID:   NewSourceID(),
	}
	if err := cfg.Validate(); err != nil {
		return StreamConfig{}, err
	}
	return cfg, nil
}

// Validate checks the invariants nchan >= 1, a rate within
// [MinSamplingRate, MaxSamplingRate], and a non-empty name.
func (c StreamConfig) Validate() error {
	if c.nchan < 1 {
		return fmt.Errorf("%w: channel count %d, need at least 1", ErrConfiguration, c.nchan)
	}
	if !(c.sampleRate > 0) || math.IsInf(c.sampleRate, 0) {
		return fmt.Errorf("%w: sampling rate %v Hz, need a positive finite rate", ErrConfiguration, c.sampleRate)
	}
	if c.sampleRate > MaxSamplingRate || c.sampleRate < MinSamplingRate {
		return fmt.Errorf("%w: sampling rate %v Hz, need %v to %v Hz", ErrConfiguration,
			c.sampleRate, MinSamplingRate, MaxSamplingRate)
	}
	if c.name == "" {
		return fmt.Errorf("%w: stream name is empty", ErrConfiguration)
	}
	if c.sourceID == "" {
		return fmt.Errorf("%w: no source identifier", ErrConfiguration)
	}
	return nil
}

// Name is the stream name subscribers discover the stream by.
func (c StreamConfig) Name() string { return c.name }

// Nchan is the number of channels in every SampleVector.
func (c StreamConfig) Nchan() int { return c.nchan }

// SampleRate is the nominal sampling rate in Hz.
func (c StreamConfig) SampleRate() float64 { return c.sampleRate }

// SourceID identifies this run of the stream.
func (c StreamConfig) SourceID() string { return c.sourceID }

// SamplePeriod is the nominal time between ticks.
func (c StreamConfig) SamplePeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.sampleRate)
}

// Descriptor returns the StreamDescriptor announced to subscribers.
func (c StreamConfig) Descriptor() StreamDescriptor {
	return StreamDescriptor{
		Name:          c.name,
		Type:          StreamType,
		ChannelCount:  c.nchan,
		NominalRate:   c.sampleRate,
		ValueEncoding: ValueEncodingFloat32,
		SourceID:      c.sourceID,
		Hostname:      Build.Host,
		Created:       StartTime,
	}
}

// NewSourceID returns a new unique, time-sortable source identifier.
func NewSourceID() string {
	return ulid.Make().String()
}
