package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/pebbe/zmq4"
	"github.com/usnistgov/eegsim"
	"github.com/usnistgov/eegsim/getbytes"
)

// sample is one decoded data message.
type sample struct {
	stream string
	tick   uint64
	values []float32
}

func decodeSample(parts [][]byte) (sample, error) {
	if len(parts) != 3 {
		return sample{}, fmt.Errorf("message has %d frames, want 3", len(parts))
	}
	tick, err := getbytes.ToUint64(parts[1])
	if err != nil {
		return sample{}, err
	}
	values, err := getbytes.ToSliceFloat32(parts[2])
	if err != nil {
		return sample{}, err
	}
	return sample{stream: string(parts[0]), tick: tick, values: values}, nil
}

// matches reports whether s belongs to the named stream. An empty name matches
// every stream. ZMQ subscriptions match by prefix, so the name is checked here.
func (s sample) matches(stream string) bool {
	return stream == "" || s.stream == stream
}

func subscribe(endpoint, topic string, timeout time.Duration) (*zmq4.Socket, error) {
	sub, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, err
	}
	if err := sub.SetRcvtimeo(timeout); err != nil {
		sub.Close()
		return nil, err
	}
	if err := sub.SetSubscribe(topic); err != nil {
		sub.Close()
		return nil, err
	}
	if err := sub.Connect(endpoint); err != nil {
		sub.Close()
		return nil, err
	}
	return sub, nil
}

// describe waits for the stream's STREAMINFO status message and prints it.
func describe(host string, ports eegsim.Portnumbers, timeout time.Duration) error {
	sub, err := subscribe(eegsim.ConnectAddress(host, ports.Status), "STREAMINFO", timeout)
	if err != nil {
		return err
	}
	defer sub.Close()
	parts, err := sub.RecvMessageBytes(0)
	if err != nil {
		return fmt.Errorf("no stream description within %v: %w", timeout, err)
	}
	if len(parts) == 2 {
		fmt.Printf("Stream: %s\n", parts[1])
	}
	return nil
}

func probe(nsamp int, host string, ports eegsim.Portnumbers, stream string, timeout time.Duration) error {
	endpoint := eegsim.ConnectAddress(host, ports.Data)
	fmt.Printf("Probing %s for the first %d samples received...\n", endpoint, nsamp)
	sub, err := subscribe(endpoint, stream, timeout)
	if err != nil {
		return err
	}
	defer sub.Close()

	for shown := 0; shown < nsamp; {
		parts, err := sub.RecvMessageBytes(0)
		if err != nil {
			return err
		}
		s, err := decodeSample(parts)
		if err != nil {
			return err
		}
		if !s.matches(stream) {
			continue
		}
		shown++
		fmt.Printf("%s tick %8d: %d channels %v\n", s.stream, s.tick, len(s.values), s.values)
	}
	return nil
}

func main() {
	var nsamp int
	var port int
	var host, stream string
	var timeout time.Duration
	flag.IntVar(&nsamp, "n", 10, "Number of samples to dump")
	flag.IntVar(&port, "port", eegsim.DefaultBasePort, "Data port to monitor")
	flag.IntVar(&port, "p", eegsim.DefaultBasePort, "Data port to monitor (shorthand)")
	flag.StringVar(&host, "host", "localhost", "Host running eegsim")
	flag.StringVar(&stream, "stream", "", "Only show this stream name (default: all)")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "Give up after waiting this long for a message")
	flag.Usage = func() {
		fmt.Printf("eegdump, for dumping the first N samples of an eegsim stream, by default from localhost:%d\n",
			eegsim.DefaultBasePort)
		fmt.Println("Usage: eegdump [flags]")
		flag.PrintDefaults()
	}
	flag.Parse()

	ports := eegsim.PortsFromBase(port)
	if err := describe(host, ports, timeout); err != nil {
		fmt.Printf("error: %v\n", err)
	}
	if err := probe(nsamp, host, ports, stream, timeout); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
