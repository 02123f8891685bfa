// Package bits provides bit manipulation utilities for packed fields. This is not a replacement for math/bits.
package bits

import (
	"fmt"
	"math/bits"
	"strings"

	"golang.org/x/exp/constraints"
)

// Ones returns a number with the lowest n bits set. n may be the full width of U,
// in which case every bit is set. If n is larger than the width of U, this panics.
func Ones[U constraints.Unsigned](n uint) U {
	size := Width[U]()
	if n > size {
		panic(fmt.Sprintf("Ones(%d) exceeds the %d bit width of %T", n, size, U(0)))
	}
	if n == 0 {
		return 0
	}
	// Shifting an all-ones value down avoids the illegal 1<<64 for 64 bit numbers.
	return ^U(0) >> (size - n)
}

// Width returns the number of bits in U.
func Width[U constraints.Unsigned]() uint {
	var u U
	switch any(u).(type) {
	case uint:
		return bits.UintSize
	case uint8:
		return 8
	case uint16:
		return 16
	case uint32:
		return 32
	case uint64:
		return 64
	case uintptr:
		return bits.UintSize
	}
	panic(fmt.Sprintf("unsupported type %T", u))
}

// Mask creates a mask for setting, getting and clearing a set of bits.
// start is the bit location you wish to start at and end is the bit you wish to end at (exclusive).
// Index starts at 0.  So Mask(1, 4) will create a mask that includes bits at location 1 to 3.
// If start >= end or end is past the width of U, this will panic.
func Mask[U constraints.Unsigned](start, end uint64) U {
	if start >= end {
		panic("start cannot be >= end")
	}
	size := uint64(Width[U]())
	if end > size {
		panic(fmt.Sprintf("end %d exceeds width %d", end, size))
	}
	return Ones[U](uint(end-start)) << start
}

// GetValue retrieves a value we stored with SetMasked. store is the unsigned number we
// stored the value in. bitMask is the mask to apply to retrieve the value. start tells
// us the starting position we stored in (we need to shift the number this many bits).
func GetValue[U, U1 constraints.Unsigned](store U, bitMask U, start uint) U1 {
	return U1((store & bitMask) >> start)
}

// SetMasked replaces the bits of store under bitMask with val shifted left by start.
// Bits of val that would land outside bitMask are dropped, so a value wider than the
// mask can never leak into neighbouring bits.
func SetMasked[I, U constraints.Unsigned](val I, store U, bitMask U, start uint) U {
	return (store &^ bitMask) | ((U(val) << start) & bitMask)
}

// SignExtend treats the lowest n bits of v as a two's complement number and returns
// it as an int64. n must be in 1..64.
func SignExtend(v uint64, n uint) int64 {
	shift := 64 - n
	return int64(v<<shift) >> shift
}

// IsPowerOfTwo reports if n is an exact power of two. Zero is not.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// Log2 returns the base 2 logarithm of n, which must be a power of two.
func Log2(n uint64) uint {
	if !IsPowerOfTwo(n) {
		panic(fmt.Sprintf("Log2(%d): not a power of two", n))
	}
	return uint(bits.TrailingZeros64(n))
}

// BytesInBinary renders bs as space separated binary octets, lowest byte first.
func BytesInBinary(bs []byte) string {
	buff := strings.Builder{}
	for i, n := range bs {
		if i > 0 {
			buff.WriteByte(' ')
		}
		buff.WriteString(fmt.Sprintf("%08b", n))
	}
	return buff.String()
}
