package eegsim

import (
	"encoding/json"
	"time"
)

// Constant parts of every StreamDescriptor.
const (
	StreamType           = "Markers"
	ValueEncodingFloat32 = "float32"
)

// StreamDescriptor is announced once per stream so subscribers can find it and
// know how to decode its samples.
type StreamDescriptor struct {
	Name          string
	Type          string
	ChannelCount  int
	NominalRate   float64
	ValueEncoding string
	SourceID      string
	Hostname      string
	Created       time.Time
}

// JSON encodes the descriptor for the status port.
func (sd StreamDescriptor) JSON() ([]byte, error) {
	return json.Marshal(sd)
}

// Publisher makes sample vectors visible to subscribers. Publish must accept
// exactly ChannelCount values per call, in a fixed channel order. Close
// releases the transport; it is called exactly once, on every exit path.
type Publisher interface {
	Publish(tick uint64, sample SampleVector) error
	Close() error
}

// PublisherOpener registers a stream outlet for the descriptor and returns it.
type PublisherOpener func(StreamDescriptor) (Publisher, error)

// StatusReporter is implemented by publishers that can also broadcast run status.
// ReportStatus must not block the caller.
type StatusReporter interface {
	ReportStatus(RunStatus)
}

// RunStatus is the periodic status message of a running stream.
type RunStatus struct {
	SourceID string
	State    string
	Ticks    uint64
	Elapsed  time.Duration
	Timing   TimingSummary
}
