package eegsim

// Contain the client updater, which publishes JSON-encoded messages
// describing the stream and its latest status on the status port.

import (
	"encoding/json"
	"time"

	"github.com/pebbe/zmq4"
)

// ClientUpdate carries the messages to be published on the status port.
type ClientUpdate struct {
	tag   string
	state interface{}
}

// How often the stream descriptor is re-published, so that late subscribers
// can discover the stream without asking.
const descriptorRebroadcast = 2 * time.Second

// newPubSocket creates a PUB socket bound to the given port.
func newPubSocket(port int) (*zmq4.Socket, error) {
	sock, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, err
	}
	// Don't let unsent messages hold up Close.
	if err := sock.SetLinger(100 * time.Millisecond); err != nil {
		sock.Close()
		return nil, err
	}
	if err := sock.Bind(bindAddress(port)); err != nil {
		sock.Close()
		return nil, err
	}
	return sock, nil
}

// runClientUpdater forwards any message from its input channel to the status
// socket, and re-publishes the descriptor periodically. It owns the socket and
// closes it (after a final STOPPED message) when messages is closed.
func runClientUpdater(pubSocket *zmq4.Socket, messages <-chan ClientUpdate, descriptor StreamDescriptor, done chan<- struct{}) {
	defer close(done)
	defer pubSocket.Close()

	ticker := time.NewTicker(descriptorRebroadcast)
	defer ticker.Stop()

	send := func(update ClientUpdate) {
		message, err := json.Marshal(update.state)
		if err != nil {
			ProblemLogger.Printf("Could not encode %s status message: %v\n", update.tag, err)
			return
		}
		if _, err := pubSocket.SendMessage(update.tag, message); err != nil {
			ProblemLogger.Printf("Could not publish %s status message: %v\n", update.tag, err)
		}
	}

	info := ClientUpdate{"STREAMINFO", descriptor}
	send(info)
	for {
		select {
		case <-ticker.C:
			send(info)
		case update, ok := <-messages:
			if !ok {
				send(ClientUpdate{"STOPPED", descriptor})
				return
			}
			send(update)
		}
	}
}
