package eegsim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLength(t *testing.T) {
	for _, nchan := range []int{1, 2, 7, 32, 256} {
		g := NewSignalGenerator(nchan, 1024)
		for tick := uint64(0); tick < 50; tick++ {
			if s := g.Generate(tick); len(s) != nchan {
				t.Fatalf("Generate(%d) with %d channels has length %d", tick, nchan, len(s))
			}
		}
	}
}

// Each value must be an integer amplitude in [-25,25] times the shared carrier.
func TestGenerateShape(t *testing.T) {
	const nchan = 64
	const tick = 10
	g1 := NewSeededSignalGenerator(nchan, 1024, 1, 2)
	g2 := NewSeededSignalGenerator(nchan, 1024, 3, 4)

	carrier := g1.Carrier(tick)
	assert.Equal(t, carrier, g2.Carrier(tick))
	assert.InDelta(t, math.Sin(2*math.Pi*12*tick/1024.0), carrier, 1e-12)
	assert.Greater(t, math.Abs(carrier), 0.5)

	s1 := g1.Generate(tick)
	s2 := g2.Generate(tick)
	assert.Len(t, s2, len(s1))
	assert.NotEqual(t, s1, s2, "different draws should give different amplitudes")
	for _, s := range []SampleVector{s1, s2} {
		for i, v := range s {
			a := float64(v) / carrier
			if math.Abs(a-math.Round(a)) > 1e-3 {
				t.Errorf("channel %d value %v is not an integer multiple of carrier %v", i, v, carrier)
			}
			if math.Abs(a) > DefaultMaxAmplitude+1e-3 {
				t.Errorf("channel %d amplitude %v outside [-%d,%d]", i, a, DefaultMaxAmplitude, DefaultMaxAmplitude)
			}
		}
	}
}

func TestAmplitudeRange(t *testing.T) {
	g := NewSeededSignalGenerator(1, 1000, 7, 7)
	seen := make(map[int]bool)
	for i := 0; i < 20000; i++ {
		a := g.amplitude()
		if a < -DefaultMaxAmplitude || a > DefaultMaxAmplitude {
			t.Fatalf("amplitude %d out of range", a)
		}
		seen[a] = true
	}
	assert.Len(t, seen, 2*DefaultMaxAmplitude+1, "every amplitude in range should occur")
}

func TestSeededIsReproducible(t *testing.T) {
	g1 := NewSeededSignalGenerator(16, 500, 11, 12)
	g2 := NewSeededSignalGenerator(16, 500, 11, 12)
	for tick := uint64(0); tick < 20; tick++ {
		assert.Equal(t, g1.Generate(tick), g2.Generate(tick))
	}
}
