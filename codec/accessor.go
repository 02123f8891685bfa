// Package codec reads and writes a single field of a packed buffer.
//
// An Accessor is computed once per field from the field's width, its bit offset, the
// total size of the structure and the width of the field's raw type. A field is read by
// loading a little endian window of up to 8 bytes that starts at ByteBegin and masking out
// the field's bits. When the field's bits don't fit in that window (the field crosses the
// raw type boundary), the remaining high bits are in the byte at ByteEnd.
//
// Buffers handed to Get and Set must be at least TotalBits()/8 bytes long. Accessors do
// not validate the buffer, they panic like any out of range slice access.
package codec

import (
	"fmt"

	"github.com/bearlytools/bitfield/errors"
	"github.com/bearlytools/bitfield/internal/binary"
	"github.com/bearlytools/bitfield/internal/bits"
)

// Accessor reads and writes the bits of one field. It is an immutable value.
type Accessor struct {
	bits      int
	offset    int
	totalBits int
	rawWidth  int

	byteBegin int
	byteEnd   int
	// window is the number of bytes loaded from byteBegin.
	window       int
	crosses      bool
	intraOffset  int
	overflowBits int
	lowMask      uint64
	highMask     uint8
}

// New returns the Accessor for a field of bits width that starts at bit offset of a
// structure totalBits long. rawWidth is the width of the field's raw type (8, 16, 32 or 64).
// New panics with an errors.Bug on arguments a validated layout cannot produce.
func New(bitsLen, offset, totalBits, rawWidth int) Accessor {
	switch rawWidth {
	case 8, 16, 32, 64:
	default:
		panic(errors.Bug(fmt.Errorf("codec.New(): rawWidth must be 8, 16, 32 or 64, got %d", rawWidth)))
	}
	switch {
	case bitsLen < 1 || bitsLen > rawWidth:
		panic(errors.Bug(fmt.Errorf("codec.New(): field of %d bits does not fit a %d bit raw type", bitsLen, rawWidth)))
	case totalBits <= 0 || totalBits%8 != 0:
		panic(errors.Bug(fmt.Errorf("codec.New(): totalBits(%d) must be a positive multiple of 8", totalBits)))
	case offset < 0 || offset+bitsLen > totalBits:
		panic(errors.Bug(fmt.Errorf("codec.New(): field at offset %d with %d bits is outside a %d bit structure", offset, bitsLen, totalBits)))
	}

	unit := rawWidth / 8
	totalBytes := totalBits / 8

	a := Accessor{
		bits:      bitsLen,
		offset:    offset,
		totalBits: totalBits,
		rawWidth:  rawWidth,
		byteEnd:   (offset + bitsLen - 1) / 8,
	}

	if offset+rawWidth <= totalBits {
		a.byteBegin = offset / 8
		a.window = unit
	} else {
		// A full raw window at offset/8 would run past the buffer. Slide the window back so
		// it ends with the buffer, the field is then always inside it.
		a.byteBegin = max(0, totalBytes-unit)
		a.window = totalBytes - a.byteBegin
	}
	a.intraOffset = offset - a.byteBegin*8
	a.crosses = a.byteEnd-a.byteBegin+1 > unit

	a.lowMask = (bits.Ones[uint64](uint(bitsLen)) << a.intraOffset) & bits.Ones[uint64](uint(rawWidth))
	if a.crosses {
		a.overflowBits = bitsLen - (rawWidth - a.intraOffset)
		a.highMask = bits.Ones[uint8](uint(a.overflowBits))
	}
	return a
}

// Bits is the width of the field.
func (a Accessor) Bits() int {
	return a.bits
}

// Offset is the bit offset of the field from the start of the structure.
func (a Accessor) Offset() int {
	return a.offset
}

// TotalBits is the size of the structure the Accessor was built for.
func (a Accessor) TotalBits() int {
	return a.totalBits
}

// RawWidth is the width of the field's raw type in bits.
func (a Accessor) RawWidth() int {
	return a.rawWidth
}

// ByteBegin is the first byte of the window the field is read from.
func (a Accessor) ByteBegin() int {
	return a.byteBegin
}

// ByteEnd is the byte holding the field's last bit.
func (a Accessor) ByteEnd() int {
	return a.byteEnd
}

// Window is the number of bytes loaded from ByteBegin.
func (a Accessor) Window() int {
	return a.window
}

// Crosses reports if the field's high bits are outside the window and stored in ByteEnd.
func (a Accessor) Crosses() bool {
	return a.crosses
}

// IntraOffset is the bit position of the field's lowest bit inside the window.
func (a Accessor) IntraOffset() int {
	return a.intraOffset
}

// OverflowBits is the number of the field's bits stored in ByteEnd when the field crosses.
func (a Accessor) OverflowBits() int {
	return a.overflowBits
}

// LowMask selects the field's bits inside the window.
func (a Accessor) LowMask() uint64 {
	return a.lowMask
}

// HighMask selects the field's bits inside ByteEnd when the field crosses.
func (a Accessor) HighMask() uint8 {
	return a.highMask
}

// Get returns the raw bits of the field stored in b.
func (a Accessor) Get(b []byte) uint64 {
	w := binary.GetWindow(b[a.byteBegin : a.byteBegin+a.window])
	v := bits.GetValue[uint64, uint64](w, a.lowMask, uint(a.intraOffset))
	if a.crosses {
		hi := uint64(b[a.byteEnd] & a.highMask)
		v |= hi << (a.rawWidth - a.intraOffset)
	}
	return v
}

// Set stores the low Bits() bits of v as the field in b. No other field's bits change.
func (a Accessor) Set(b []byte, v uint64) {
	v &= bits.Ones[uint64](uint(a.bits))

	win := b[a.byteBegin : a.byteBegin+a.window]
	w := binary.GetWindow(win)
	w = bits.SetMasked(v, w, a.lowMask, uint(a.intraOffset))
	binary.PutWindow(win, w)

	if a.crosses {
		hi := uint8(v >> (a.rawWidth - a.intraOffset))
		b[a.byteEnd] = (b[a.byteEnd] &^ a.highMask) | (hi & a.highMask)
	}
}

func (a Accessor) String() string {
	return fmt.Sprintf(
		"bits=%d offset=%d window=[%d,%d) end=%d crosses=%v intra=%d overflow=%d low=%#x high=%#x",
		a.bits, a.offset, a.byteBegin, a.byteBegin+a.window, a.byteEnd, a.crosses,
		a.intraOffset, a.overflowBits, a.lowMask, a.highMask,
	)
}
