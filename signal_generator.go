package eegsim

import (
	"math"
	"math/rand/v2"
	"time"
)

// Parameters of the synthetic signal.
const (
	DefaultSignalFrequency = 12.0 // Hz, shared by all channels
	DefaultMaxAmplitude    = 25   // amplitudes are integers in [-max, +max]
)

// SampleVector holds one value per channel for a single tick.
type SampleVector []float32

// SignalGenerator synthesizes sample vectors of the form
// amplitude * sin(2 pi f t), with a random integer amplitude per channel per tick.
// It is not safe for concurrent use, because it owns its random source.
type SignalGenerator struct {
	nchan        int
	sampleRate   float64 // samples per second
	frequency    float64 // Hz
	maxAmplitude int
	rng          *rand.Rand
}

// NewSignalGenerator creates a SignalGenerator for the given channel count and rate,
// using the default frequency and amplitude range and a randomly seeded source.
func NewSignalGenerator(nchan int, rate float64) *SignalGenerator {
	seed1 := uint64(time.Now().UnixNano())
	return NewSeededSignalGenerator(nchan, rate, seed1, rand.Uint64())
}

// NewSeededSignalGenerator is like NewSignalGenerator with a reproducible random source.
func NewSeededSignalGenerator(nchan int, rate float64, seed1, seed2 uint64) *SignalGenerator {
	return &SignalGenerator{
		nchan:        nchan,
		sampleRate:   rate,
		frequency:    DefaultSignalFrequency,
		maxAmplitude: DefaultMaxAmplitude,
		rng:          rand.New(rand.NewPCG(seed1, seed2)),
	}
}

// Nchan returns the length of every vector this generator produces.
func (g *SignalGenerator) Nchan() int {
	return g.nchan
}

// Carrier returns the amplitude-free sine component sin(2 pi f t) at the given tick.
// It is the same for every channel.
func (g *SignalGenerator) Carrier(tick uint64) float64 {
	t := float64(tick) / g.sampleRate
	return math.Sin(2 * math.Pi * g.frequency * t)
}

// Generate returns a new SampleVector of length Nchan for the given tick.
func (g *SignalGenerator) Generate(tick uint64) SampleVector {
	carrier := g.Carrier(tick)
	sample := make(SampleVector, g.nchan)
	for i := range sample {
		sample[i] = float32(float64(g.amplitude()) * carrier)
	}
	return sample
}

// amplitude draws an integer uniformly from [-maxAmplitude, maxAmplitude].
func (g *SignalGenerator) amplitude() int {
	return g.rng.IntN(2*g.maxAmplitude+1) - g.maxAmplitude
}
