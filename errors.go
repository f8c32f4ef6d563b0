package eegsim

import "errors"

// Errors that end a simulated stream. Test for them with errors.Is; the
// returned errors wrap one of these with the detailed cause.
var (
	// ErrConfiguration means the StreamConfig failed validation.
	ErrConfiguration = errors.New("invalid stream configuration")

	// ErrPublisherInit means the stream outlet could not be registered.
	ErrPublisherInit = errors.New("could not initialize stream publisher")

	// ErrPublish means one sample vector failed to reach the transport.
	ErrPublish = errors.New("could not publish sample")
)
