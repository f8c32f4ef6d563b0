// Package getbytes converts sample vectors and tick counters to and from the
// byte frames published on the data socket. The encoders use unsafe.Slice and
// do not copy, so they produce little-endian frames only on little-endian hosts
// (all the hosts eegsim runs on). The decoders copy and are portable.
package getbytes

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// FromSliceFloat32 convert a []float32 to []byte using unsafe
func FromSliceFloat32(d []float32) []byte {
	if len(d) == 0 {
		return []byte{}
	}
	outlength := uintptr(len(d)) * unsafe.Sizeof(d[0]) / unsafe.Sizeof(byte(0))
	return unsafe.Slice((*byte)(unsafe.Pointer(&d[0])), outlength)
}

// FromUint64 converts a uint64 to []byte using unsafe
func FromUint64(d uint64) []byte {
	s := []uint64{d}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), unsafe.Sizeof(d))
}

// ToSliceFloat32 decodes little-endian float32 values from b.
func ToSliceFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("frame of %d bytes is not a whole number of float32 values", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

// ToUint64 decodes a little-endian uint64 from an 8-byte frame.
func ToUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("frame of %d bytes, want 8", len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}
