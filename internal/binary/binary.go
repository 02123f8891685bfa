// Package binary replaces the encoding/binary package in the standard library for little endian
// encoding of packed storage windows using generics.
package binary

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Enc is the little-endian binary encoder. Do not change this, the bit offsets of every
// field assume the lowest byte of a window holds the lowest bits.
var Enc = binary.LittleEndian

// Get gets any Uint size from a []byte slice.
func Get[T constraints.Unsigned](b []byte) T {
	_ = b[len(b)-1] // bounds check hint to compiler; see golang.org/issue/14808

	var r T // This is only used for type detction.
	switch any(r).(type) {
	case uint8:
		return T(b[0])
	case uint16:
		return T(uint16(b[0]) | uint16(b[1])<<8)
	case uint32:
		return T(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
	case uint64:
		return T(uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
			uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56)
	}
	panic(fmt.Sprintf("unsupported type that passed the type constraint %T", r))
}

// Put puts any Uint size into a []byte slice.
func Put[T constraints.Unsigned](b []byte, v T) {
	switch any(v).(type) {
	case uint8:
		b[0] = byte(v)
		return
	case uint16:
		Enc.PutUint16(b, uint16(v))
		return
	case uint32:
		Enc.PutUint32(b, uint32(v))
		return
	}
	Enc.PutUint64(b, uint64(v))
}

// GetWindow reads len(b) bytes (1 to 8) as a little endian number. Windows of 1, 2, 4 and 8
// bytes take the fixed size path, anything else is assembled a byte at a time.
func GetWindow(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(Get[uint16](b))
	case 4:
		return uint64(Get[uint32](b))
	case 8:
		return Get[uint64](b)
	}
	if len(b) == 0 || len(b) > 8 {
		panic(fmt.Sprintf("GetWindow() must receive 1 to 8 bytes, got %d", len(b)))
	}
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// PutWindow writes the lowest len(b) bytes (1 to 8) of v into b in little endian order.
func PutWindow(b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
		return
	case 2:
		Put(b, uint16(v))
		return
	case 4:
		Put(b, uint32(v))
		return
	case 8:
		Put(b, v)
		return
	}
	if len(b) == 0 || len(b) > 8 {
		panic(fmt.Sprintf("PutWindow() must receive 1 to 8 bytes, got %d", len(b)))
	}
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}
