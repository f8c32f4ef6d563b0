package eegsim

import (
	"fmt"

	"github.com/pebbe/zmq4"
	"github.com/usnistgov/eegsim/getbytes"
)

// ZMQPublisher is a stream outlet on two ZMQ PUB sockets. The data socket
// carries one 3-frame message per tick: stream name, tick index (uint64) and
// the channel values (float32), all little-endian. The status socket carries
// the JSON StreamDescriptor and periodic RunStatus messages.
type ZMQPublisher struct {
	descriptor  StreamDescriptor
	topic       []byte
	data        *zmq4.Socket
	updates     chan ClientUpdate
	updaterDone chan struct{}
	closed      bool
}

// NewZMQPublisher binds the data and status sockets for the described stream.
// A nonzero sndbuf sets the kernel send buffer of the data socket. Errors wrap
// ErrPublisherInit; the usual cause is another stream already bound to the ports.
func NewZMQPublisher(descriptor StreamDescriptor, ports Portnumbers, sndbuf int) (*ZMQPublisher, error) {
	data, err := newPubSocket(ports.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: stream %q data port %d: %v", ErrPublisherInit, descriptor.Name, ports.Data, err)
	}
	if sndbuf > 0 {
		if err := CheckSendBuffer(sndbuf); err != nil {
			ProblemLogger.Printf("Warning: %v\n", err)
		}
		if err := data.SetSndbuf(sndbuf); err != nil {
			data.Close()
			return nil, fmt.Errorf("%w: setting SNDBUF=%d: %v", ErrPublisherInit, sndbuf, err)
		}
	}
	status, err := newPubSocket(ports.Status)
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("%w: stream %q status port %d: %v", ErrPublisherInit, descriptor.Name, ports.Status, err)
	}

	p := &ZMQPublisher{
		descriptor:  descriptor,
		topic:       []byte(descriptor.Name),
		data:        data,
		updates:     make(chan ClientUpdate, 8),
		updaterDone: make(chan struct{}),
	}
	go runClientUpdater(status, p.updates, descriptor, p.updaterDone)
	return p, nil
}

// ZMQOpener returns a PublisherOpener that opens a ZMQPublisher on the given ports.
func ZMQOpener(ports Portnumbers, sndbuf int) PublisherOpener {
	return func(descriptor StreamDescriptor) (Publisher, error) {
		return NewZMQPublisher(descriptor, ports, sndbuf)
	}
}

// Publish sends one sample vector. PUB sockets drop messages for slow
// subscribers rather than block, so this never waits on a subscriber.
func (p *ZMQPublisher) Publish(tick uint64, sample SampleVector) error {
	if p.closed {
		return fmt.Errorf("publisher for stream %q is closed", p.descriptor.Name)
	}
	_, err := p.data.SendMessage(p.topic, getbytes.FromUint64(tick), getbytes.FromSliceFloat32(sample))
	return err
}

// ReportStatus queues a status message for the status socket, dropping it if
// the queue is full.
func (p *ZMQPublisher) ReportStatus(status RunStatus) {
	if p.closed {
		return
	}
	select {
	case p.updates <- ClientUpdate{"STATUS", status}:
	default:
	}
}

// Close shuts down the status updater and both sockets.
func (p *ZMQPublisher) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.updates)
	<-p.updaterDone
	return p.data.Close()
}
