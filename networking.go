package eegsim

import "fmt"

// Portnumbers holds all TCP port numbers used by one simulated stream.
type Portnumbers struct {
	Data   int
	Status int
}

// DefaultBasePort is the data port unless configured otherwise.
const DefaultBasePort = 5600

// PortsFromBase assigns the data port to base and the status port to base+1.
func PortsFromBase(base int) Portnumbers {
	return Portnumbers{Data: base, Status: base + 1}
}

// bindAddress is the ZMQ endpoint a PUB socket binds to on all interfaces.
func bindAddress(port int) string {
	return fmt.Sprintf("tcp://*:%d", port)
}

// ConnectAddress is the ZMQ endpoint a subscriber connects to.
func ConnectAddress(host string, port int) string {
	return fmt.Sprintf("tcp://%s:%d", host, port)
}
