package eegsim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// SimState is used to indicate the lifecycle state of a Simulator.
type SimState int

// Names for the possible values of SimState
const (
	Starting SimState = iota // Validating config and opening the publisher
	Running                  // Publishing one sample per tick
	Stopped                  // Terminal; the publisher has been released
)

func (s SimState) String() string {
	switch s {
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	}
	return fmt.Sprintf("SimState(%d)", int(s))
}

// ExitStatus says how a run ended.
type ExitStatus int

// Possible ways a run can end.
const (
	Failed      ExitStatus = iota // An error ended the run
	Completed                     // A tick or duration limit was reached
	Interrupted                   // The context was cancelled; a normal stop
)

func (s ExitStatus) String() string {
	switch s {
	case Failed:
		return "failed"
	case Completed:
		return "completed"
	case Interrupted:
		return "interrupted"
	}
	return fmt.Sprintf("ExitStatus(%d)", int(s))
}

// RunResult summarizes one call to Simulator.Run.
type RunResult struct {
	Status  ExitStatus
	Ticks   uint64 // sample vectors published
	Elapsed time.Duration
	Timing  TimingSummary // of the final reporting window
}

// Simulator drives the generate -> publish -> pace loop for one stream.
type Simulator struct {
	config    StreamConfig
	open      PublisherOpener
	generator *SignalGenerator

	// Optional limits; zero means unlimited.
	MaxTicks uint64
	Duration time.Duration // nominal stream time, measured in ticks/rate

	stateLock sync.Mutex
	state     SimState
}

// NewSimulator creates a Simulator. Nothing is validated or opened until Run.
func NewSimulator(config StreamConfig, open PublisherOpener) *Simulator {
	return &Simulator{config: config, open: open, state: Starting}
}

// SetGenerator replaces the default randomly seeded SignalGenerator.
func (s *Simulator) SetGenerator(g *SignalGenerator) {
	s.generator = g
}

// State returns the current lifecycle state.
func (s *Simulator) State() SimState {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	return s.state
}

func (s *Simulator) setState(state SimState) {
	s.stateLock.Lock()
	s.state = state
	s.stateLock.Unlock()
}

// Run validates the configuration, opens the publisher, and publishes one
// sample vector per tick until ctx is cancelled, a limit is reached, or a
// publish fails. The stop check happens only between ticks. The publisher is
// closed before Run returns, on every path that opened it.
//
// Cancellation is a normal stop: Run returns Interrupted and a nil error.
// Errors wrap ErrConfiguration, ErrPublisherInit, or ErrPublish.
func (s *Simulator) Run(ctx context.Context) (result RunResult, err error) {
	s.setState(Starting)
	defer s.setState(Stopped)
	result.Status = Failed

	if err := s.config.Validate(); err != nil {
		ProblemLogger.Printf("Stream configuration rejected: %v\n", err)
		return result, err
	}
	if s.open == nil {
		return result, fmt.Errorf("%w: no publisher opener", ErrPublisherInit)
	}
	pub, err := s.open(s.config.Descriptor())
	if err != nil {
		if !errors.Is(err, ErrPublisherInit) {
			err = fmt.Errorf("%w: %v", ErrPublisherInit, err)
		}
		ProblemLogger.Printf("Stream %q could not start: %v\n", s.config.Name(), err)
		return result, err
	}
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			ProblemLogger.Printf("Error closing stream %q publisher: %v\n", s.config.Name(), cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	gen := s.generator
	if gen == nil {
		gen = NewSignalGenerator(s.config.Nchan(), s.config.SampleRate())
	}
	pacer := NewPacer(s.config.SampleRate())
	reporter, _ := pub.(StatusReporter)
	reportEvery := uint64(math.Max(1, math.Ceil(s.config.SampleRate())))

	pacer.Start()
	s.setState(Running)
	UpdateLogger.Printf("Stream %q (source %s) running: %d channels at %.3f Hz\n",
		s.config.Name(), s.config.SourceID(), s.config.Nchan(), s.config.SampleRate())

	finish := func(status ExitStatus) (RunResult, error) {
		result = RunResult{
			Status:  status,
			Ticks:   pacer.Tick(),
			Elapsed: pacer.Elapsed(),
			Timing:  pacer.Stats().Summary(),
		}
		UpdateLogger.Printf("Stream %q %s after %d samples in %v\n",
			s.config.Name(), status, result.Ticks, result.Elapsed)
		return result, nil
	}

	for {
		// Stop requests are honored here and in the wait, both between ticks.
		select {
		case <-ctx.Done():
			return finish(Interrupted)
		default:
		}
		if s.limitReached(pacer) {
			return finish(Completed)
		}

		tick := pacer.Tick()
		sample := gen.Generate(tick)
		if err := publishSample(pub, tick, sample, s.config.Nchan()); err != nil {
			result, _ = finish(Failed)
			ProblemLogger.Printf("Stream %q stopping: %v\n", s.config.Name(), err)
			return result, err
		}

		// The lateness window is bounded by reportEvery whether or not anyone
		// is listening for status.
		if (tick+1)%reportEvery == 0 {
			if reporter != nil {
				reporter.ReportStatus(RunStatus{
					SourceID: s.config.SourceID(),
					State:    Running.String(),
					Ticks:    tick + 1,
					Elapsed:  pacer.Elapsed(),
					Timing:   pacer.Stats().Summary(),
				})
			}
			pacer.Stats().NewWindow()
		}

		if err := pacer.Wait(ctx); err != nil {
			return finish(Interrupted)
		}
	}
}

// limitReached reports whether the tick now due lies beyond MaxTicks or Duration.
func (s *Simulator) limitReached(pacer *Pacer) bool {
	if s.MaxTicks > 0 && pacer.Tick() >= s.MaxTicks {
		return true
	}
	if s.Duration > 0 && pacer.Deadline().Sub(pacer.start) >= s.Duration {
		return true
	}
	return false
}

// publishSample hands one vector to the publisher. A vector of the wrong length
// is a programming error, not a runtime condition, so it panics.
func publishSample(pub Publisher, tick uint64, sample SampleVector, nchan int) error {
	if len(sample) != nchan {
		panic(fmt.Sprintf("sample vector has %d values, stream has %d channels", len(sample), nchan))
	}
	if err := pub.Publish(tick, sample); err != nil {
		return fmt.Errorf("%w: tick %d: %v", ErrPublish, tick, err)
	}
	return nil
}
