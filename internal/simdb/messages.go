package simdb

import "time"

// The composite types used for messages to the ClickHouse database.

// StreamActivityMessage is the information for the streamactivity table.
// One row is written when a stream starts and another (same ID) when it stops.
type StreamActivityMessage struct {
	ID         string // the stream's source identifier
	Hostname   string
	Githash    string
	Version    string
	GoVersion  string
	CPUs       int
	StreamName string
	Nchannels  int
	SampleRate float64
	Samples    uint64
	ExitStatus string
	Start      time.Time
	End        time.Time
}
